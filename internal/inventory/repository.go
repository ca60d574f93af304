package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pawhome/pawstock/internal/logger"
)

// TokenSource supplies the bearer token for API calls. The session store
// implements it.
type TokenSource interface {
	Token() string
}

// Repository is the sole owner of the canonical remote product state. It
// holds no product data itself; the optional snapshot keeps a transient local
// mirror that reconciles with the next authoritative read.
type Repository struct {
	apiURL     string
	tokens     TokenSource
	snapshot   *Snapshot
	httpClient *http.Client
}

// NewRepository creates a repository against the given API base URL. snapshot
// may be nil, in which case deleted listings and restore are unavailable.
func NewRepository(apiURL string, tokens TokenSource, snapshot *Snapshot) *Repository {
	return &Repository{
		apiURL:     strings.TrimRight(apiURL, "/"),
		tokens:     tokens,
		snapshot:   snapshot,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Draft holds the fields for a new product, validated client-side before
// anything is sent.
type Draft struct {
	Name            string
	SupplierID      int64
	Price           float64
	Stock           int
	MinStock        int
	Image           string
	Characteristics string
}

func (d *Draft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if d.SupplierID <= 0 {
		return &ValidationError{Field: "supplier", Reason: "a supplier is required"}
	}
	if d.Price <= 0 {
		return &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if d.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if d.MinStock < 0 {
		return &ValidationError{Field: "minimum stock", Reason: "must not be negative"}
	}
	return nil
}

// List fetches all active products and refreshes the local snapshot.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	var records []Record
	if err := r.call(ctx, http.MethodGet, "/api/inventory/productos", nil, "list products", &records); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].ToProduct())
	}

	if r.snapshot != nil {
		if err := r.snapshot.Update(products); err != nil {
			logger.Warn("Failed to refresh product snapshot", logger.F("error", err))
		}
	}

	return products, nil
}

// ListLowStock fetches the server-filtered low-stock subset.
func (r *Repository) ListLowStock(ctx context.Context) ([]Product, error) {
	var records []Record
	if err := r.call(ctx, http.MethodGet, "/api/inventory/productos/stock-bajo", nil, "list low-stock products", &records); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].ToProduct())
	}
	return products, nil
}

// Create validates the draft locally and submits it.
func (r *Repository) Create(ctx context.Context, draft Draft) (Product, error) {
	if err := draft.validate(); err != nil {
		return Product{}, err
	}

	payload := map[string]interface{}{
		"nombre":      strings.TrimSpace(draft.Name),
		"cantidad":    draft.Stock,
		"precio":      draft.Price,
		"idProveedor": draft.SupplierID,
	}
	if draft.MinStock > 0 {
		payload["umbralMinimo"] = draft.MinStock
	}
	if draft.Image != "" {
		payload["imagen"] = draft.Image
	}
	if draft.Characteristics != "" {
		payload["descripcion"] = draft.Characteristics
	}

	var record Record
	if err := r.call(ctx, http.MethodPost, "/api/inventory/productos", payload, "create product", &record); err != nil {
		return Product{}, err
	}

	logger.Info("Product created", logger.F("id", record.Codigo), logger.F("name", record.Nombre))
	return record.ToProduct(), nil
}

// SoftDelete removes a product from the active listing. The remote delete is
// logical, so the record stays retrievable via Deleted.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	path := "/api/inventory/productos/" + id
	if err := r.call(ctx, http.MethodDelete, path, nil, "delete product", nil); err != nil {
		return err
	}

	if r.snapshot != nil {
		if err := r.snapshot.MarkDeleted(id); err != nil {
			logger.Warn("Failed to mark snapshot record deleted", logger.F("id", id), logger.F("error", err))
		}
	}

	logger.Info("Product soft-deleted", logger.F("id", id))
	return nil
}

// Restore flips a soft-deleted product back to active in the local snapshot.
// The backend exposes no restore endpoint, so this is a client-side fallback:
// the change holds until the next authoritative read says otherwise.
func (r *Repository) Restore(ctx context.Context, id string) (Product, error) {
	if r.snapshot == nil {
		return Product{}, ErrNotFound
	}
	return r.snapshot.Restore(id)
}

// Deleted lists soft-deleted products from the local snapshot.
func (r *Repository) Deleted(ctx context.Context) ([]Product, error) {
	if r.snapshot == nil {
		return nil, nil
	}
	return r.snapshot.Deleted()
}

// IncreaseStock sends a positive delta. The server computes and returns the
// authoritative resulting stock.
func (r *Repository) IncreaseStock(ctx context.Context, id string, amount int) (Product, error) {
	if amount <= 0 {
		return Product{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	path := fmt.Sprintf("/api/inventory/productos/%s/aumentar-stock", id)
	var record Record
	if err := r.call(ctx, http.MethodPost, path, map[string]int{"cantidad": amount}, "increase stock", &record); err != nil {
		return Product{}, err
	}

	return r.reconcile(record), nil
}

// DecreaseStock sends a negative delta as a positive amount. The server clamps
// the result at zero and is the source of truth for the final value.
func (r *Repository) DecreaseStock(ctx context.Context, id string, amount int) (Product, error) {
	if amount <= 0 {
		return Product{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	path := fmt.Sprintf("/api/inventory/productos/%s/disminuir-stock", id)
	var record Record
	if err := r.call(ctx, http.MethodPost, path, map[string]int{"cantidad": amount}, "decrease stock", &record); err != nil {
		return Product{}, err
	}

	return r.reconcile(record), nil
}

// UpdateMinThreshold changes the low-stock trigger point.
func (r *Repository) UpdateMinThreshold(ctx context.Context, id string, value int) (Product, error) {
	if value < 0 {
		return Product{}, &ValidationError{Field: "minimum stock", Reason: "must not be negative"}
	}

	path := fmt.Sprintf("/api/inventory/productos/%s/umbral-minimo", id)
	var record Record
	if err := r.call(ctx, http.MethodPut, path, map[string]int{"umbralMinimo": value}, "update minimum threshold", &record); err != nil {
		return Product{}, err
	}

	return r.reconcile(record), nil
}

// reconcile maps a mutated record and folds it back into the snapshot.
func (r *Repository) reconcile(record Record) Product {
	p := record.ToProduct()
	if r.snapshot != nil {
		if err := r.snapshot.Put(p); err != nil {
			logger.Warn("Failed to reconcile snapshot", logger.F("id", p.ID), logger.F("error", err))
		}
	}
	return p
}

// call performs one authenticated API request. A missing token fails locally
// before any network activity.
func (r *Repository) call(ctx context.Context, method, path string, payload interface{}, op string, out interface{}) error {
	token := r.tokens.Token()
	if token == "" {
		return ErrMissingCredential
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.apiURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		rerr := remoteError(op, resp.StatusCode, respBody)
		logger.Info("API call rejected",
			logger.F("op", op),
			logger.F("status", resp.StatusCode),
			logger.F("message", rerr.Message))
		return rerr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
