package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// staticToken is a TokenSource with a fixed value.
type staticToken string

func (s staticToken) Token() string { return string(s) }

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := OpenSnapshot(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("failed to open snapshot: %v", err)
	}
	t.Cleanup(func() { snap.Close() })
	return snap
}

func TestListMapsRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]Record{
			{Codigo: 1, Nombre: "Collar", Stock: 8, Precio: 12.5, UmbralMinimo: intPtr(15), StockBajo: boolPtr(true)},
			{Codigo: 2, Nombre: "Cama", Stock: 15, Precio: 89.99},
		})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].ID != "1" || !products[0].LowStock {
		t.Errorf("first product = %+v", products[0])
	}
	if products[1].Image != PlaceholderImage {
		t.Errorf("missing image should default to placeholder, got %q", products[1].Image)
	}
}

func TestMissingCredentialSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken(""), nil)

	if _, err := repo.List(context.Background()); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("List err = %v, want ErrMissingCredential", err)
	}
	if _, err := repo.IncreaseStock(context.Background(), "1", 5); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("IncreaseStock err = %v, want ErrMissingCredential", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("made %d network calls without a token", n)
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)

	cases := []Draft{
		{Name: "", SupplierID: 1, Price: 9.99, Stock: 5},
		{Name: "   ", SupplierID: 1, Price: 9.99, Stock: 5},
		{Name: "Collar", SupplierID: 0, Price: 9.99, Stock: 5},
		{Name: "Collar", SupplierID: 1, Price: 0, Stock: 5},
		{Name: "Collar", SupplierID: 1, Price: 9.99, Stock: -1},
		{Name: "Collar", SupplierID: 1, Price: 9.99, Stock: 5, MinStock: -2},
	}
	for i, draft := range cases {
		_, err := repo.Create(context.Background(), draft)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("case %d: err = %v, want ValidationError", i, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("validation failures made %d network calls", n)
	}
}

func TestCreateSendsBackendShape(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Record{Codigo: 10, Nombre: "Collar", Stock: 5, Precio: 9.99})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	p, err := repo.Create(context.Background(), Draft{
		Name:       "Collar",
		SupplierID: 3,
		Price:      9.99,
		Stock:      5,
		MinStock:   2,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got["nombre"] != "Collar" || got["cantidad"] != float64(5) || got["idProveedor"] != float64(3) {
		t.Errorf("payload = %v", got)
	}
	if got["umbralMinimo"] != float64(2) {
		t.Errorf("umbralMinimo = %v, want 2", got["umbralMinimo"])
	}
	if p.ID != "10" {
		t.Errorf("created product id = %q", p.ID)
	}
}

func TestRemoteErrorMessageExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "el nombre ya existe"})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	_, err := repo.Create(context.Background(), Draft{Name: "Collar", SupplierID: 1, Price: 9.99, Stock: 5})

	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if rerr.Message != "el nombre ya existe" {
		t.Errorf("message = %q, want the server message", rerr.Message)
	}
	if rerr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", rerr.Status)
	}
}

func TestRemoteErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	_, err := repo.DecreaseStock(context.Background(), "1", 5)

	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if rerr.Message != "decrease stock failed: 502" {
		t.Errorf("fallback message = %q", rerr.Message)
	}
}

func TestStockMutationsSendDeltas(t *testing.T) {
	var path string
	var payload map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(Record{Codigo: 5, Nombre: "Arena", Stock: 12, Precio: 22.3})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)

	p, err := repo.IncreaseStock(context.Background(), "5", 10)
	if err != nil {
		t.Fatalf("IncreaseStock failed: %v", err)
	}
	if path != "/api/inventory/productos/5/aumentar-stock" || payload["cantidad"] != 10 {
		t.Errorf("increase: path=%q payload=%v", path, payload)
	}
	if p.Stock != 12 {
		t.Errorf("stock = %d, want server-confirmed 12", p.Stock)
	}

	if _, err := repo.DecreaseStock(context.Background(), "5", 3); err != nil {
		t.Fatalf("DecreaseStock failed: %v", err)
	}
	if path != "/api/inventory/productos/5/disminuir-stock" || payload["cantidad"] != 3 {
		t.Errorf("decrease: path=%q payload=%v", path, payload)
	}

	if _, err := repo.DecreaseStock(context.Background(), "5", 0); err == nil {
		t.Error("zero delta should be rejected client-side")
	}
}

func TestDecreaseBeyondStockClampsAtZero(t *testing.T) {
	// Server is the arbiter: it clamps and returns the final value.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]int
		json.NewDecoder(r.Body).Decode(&payload)
		stock := 5 - payload["cantidad"]
		if stock < 0 {
			stock = 0
		}
		json.NewEncoder(w).Encode(Record{Codigo: 1, Nombre: "Arena", Stock: stock})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	p, err := repo.DecreaseStock(context.Background(), "1", 1000)
	if err != nil {
		t.Fatalf("DecreaseStock failed: %v", err)
	}
	if p.Stock != 0 {
		t.Errorf("stock = %d, want clamp at 0, never negative", p.Stock)
	}
}

func TestUpdateMinThreshold(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(Record{Codigo: 9, Nombre: "Cama", Stock: 15, UmbralMinimo: intPtr(20), StockBajo: boolPtr(true)})
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), nil)
	p, err := repo.UpdateMinThreshold(context.Background(), "9", 20)
	if err != nil {
		t.Fatalf("UpdateMinThreshold failed: %v", err)
	}
	if method != http.MethodPut || path != "/api/inventory/productos/9/umbral-minimo" {
		t.Errorf("request = %s %s", method, path)
	}
	if p.MinStock != 20 || !p.LowStock {
		t.Errorf("updated product = %+v", p)
	}

	if _, err := repo.UpdateMinThreshold(context.Background(), "9", -1); err == nil {
		t.Error("negative threshold should be rejected client-side")
	}
}

func TestSoftDeleteAndLocalRestore(t *testing.T) {
	deleted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			records := []Record{{Codigo: 2, Nombre: "Cama", Stock: 15, Precio: 89.99}}
			if !deleted {
				records = append(records, Record{Codigo: 1, Nombre: "Collar", Stock: 8, Precio: 12.5})
			}
			json.NewEncoder(w).Encode(records)
		}
	}))
	defer srv.Close()

	repo := NewRepository(srv.URL, staticToken("tok"), testSnapshot(t))
	ctx := context.Background()

	if _, err := repo.List(ctx); err != nil {
		t.Fatal(err)
	}
	if err := repo.SoftDelete(ctx, "1"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	// Gone from the active listing.
	active, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range active {
		if p.ID == "1" {
			t.Error("soft-deleted product still in active listing")
		}
	}

	// Still retrievable from the deleted view.
	gone, err := repo.Deleted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(gone) != 1 || gone[0].ID != "1" || !gone[0].IsDeleted {
		t.Fatalf("deleted view = %+v", gone)
	}

	// Local restore flips the flag back.
	restored, err := repo.Restore(ctx, "1")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.IsDeleted {
		t.Error("restored product still flagged deleted")
	}

	if _, err := repo.Restore(ctx, "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("restoring unknown id: err = %v, want ErrNotFound", err)
	}
}
