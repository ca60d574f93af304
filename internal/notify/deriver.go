package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pawhome/pawstock/internal/inventory"
)

// Severity distinguishes an empty shelf from a running-low one.
type Severity int

const (
	SeverityLowStock Severity = iota
	SeverityOutOfStock
)

// String returns the display label for the severity.
func (s Severity) String() string {
	if s == SeverityOutOfStock {
		return "out of stock"
	}
	return "low stock"
}

// Notification is one low-stock alert. Ephemeral: recomputed on every poll,
// never persisted.
type Notification struct {
	ProductID   string
	ProductName string
	Stock       int
	MinStock    int
	Severity    Severity
	Message     string
}

// Derive computes the alert set locally from a product listing: one
// notification per non-deleted product whose resolved low-stock flag is set,
// out-of-stock products first.
func Derive(products []inventory.Product) []Notification {
	var out, low []Notification
	seen := make(map[string]bool)

	for _, p := range products {
		if p.IsDeleted || seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		switch {
		case p.Stock == 0:
			out = append(out, Notification{
				ProductID:   p.ID,
				ProductName: p.Name,
				Stock:       0,
				MinStock:    p.MinStock,
				Severity:    SeverityOutOfStock,
				Message:     fmt.Sprintf("%s is out of stock", p.Name),
			})
		case p.LowStock:
			low = append(low, Notification{
				ProductID:   p.ID,
				ProductName: p.Name,
				Stock:       p.Stock,
				MinStock:    p.MinStock,
				Severity:    SeverityLowStock,
				Message:     fmt.Sprintf("%s is low on stock (%d units)", p.Name, p.Stock),
			})
		}
	}

	return append(out, low...)
}

// TokenSource supplies the bearer token for the remote strategy.
type TokenSource interface {
	Token() string
}

// remoteRecord is a server-computed notification as returned by the API.
type remoteRecord struct {
	ID             int64  `json:"id"`
	IDProducto     int64  `json:"idProducto"`
	NombreProducto string `json:"nombreProducto"`
	StockActual    int    `json:"stockActual"`
	UmbralMinimo   int    `json:"umbralMinimo"`
	FechaCreacion  string `json:"fechaCreacion"`
	Eliminada      bool   `json:"eliminada"`
}

// Source produces the current alert set.
type Source func(ctx context.Context) ([]Notification, error)

// LocalSource derives alerts from the product repository's active listing.
func LocalSource(repo *inventory.Repository) Source {
	return func(ctx context.Context) ([]Notification, error) {
		products, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return Derive(products), nil
	}
}

// RemoteSource fetches the server-computed alert list instead of deriving it
// locally. Dismissed records are skipped; duplicates per product collapse to
// the first occurrence.
func RemoteSource(apiURL string, tokens TokenSource) Source {
	client := &http.Client{Timeout: 30 * time.Second}
	url := strings.TrimRight(apiURL, "/") + "/api/inventory/notificaciones"

	return func(ctx context.Context) ([]Notification, error) {
		token := tokens.Token()
		if token == "" {
			return nil, inventory.ErrMissingCredential
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch notifications: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("fetch notifications failed: %d", resp.StatusCode)
		}

		var records []remoteRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("fetch notifications: failed to decode response: %w", err)
		}

		seen := make(map[int64]bool)
		notifications := make([]Notification, 0, len(records))
		for _, r := range records {
			if r.Eliminada || seen[r.IDProducto] {
				continue
			}
			seen[r.IDProducto] = true

			n := Notification{
				ProductID:   strconv.FormatInt(r.IDProducto, 10),
				ProductName: r.NombreProducto,
				Stock:       r.StockActual,
				MinStock:    r.UmbralMinimo,
			}
			if r.StockActual == 0 {
				n.Severity = SeverityOutOfStock
				n.Message = fmt.Sprintf("%s is out of stock", r.NombreProducto)
			} else {
				n.Severity = SeverityLowStock
				n.Message = fmt.Sprintf("%s is low on stock (%d units)", r.NombreProducto, r.StockActual)
			}
			notifications = append(notifications, n)
		}
		return notifications, nil
	}
}
