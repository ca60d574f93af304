package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pawhome/pawstock/devserver"
	"github.com/pawhome/pawstock/internal/inventory"
)

func TestDeriveLocalAlerts(t *testing.T) {
	products := []inventory.Product{
		{ID: "1", Name: "Alimento Premium", Stock: 25, MinStock: 10, LowStock: false},
		{ID: "2", Name: "Collar Ajustable", Stock: 8, MinStock: 15, LowStock: true},
		{ID: "3", Name: "Arena Premium", Stock: 0, MinStock: 12, LowStock: true},
		{ID: "4", Name: "Cama Vieja", Stock: 0, MinStock: 5, LowStock: true, IsDeleted: true},
	}

	alerts := Derive(products)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2 (healthy and deleted products excluded)", len(alerts))
	}

	// Out-of-stock alerts come first.
	if alerts[0].ProductID != "3" || alerts[0].Severity != SeverityOutOfStock {
		t.Errorf("first alert = %+v", alerts[0])
	}
	if alerts[0].Message != "Arena Premium is out of stock" {
		t.Errorf("message = %q", alerts[0].Message)
	}

	if alerts[1].ProductID != "2" || alerts[1].Severity != SeverityLowStock {
		t.Errorf("second alert = %+v", alerts[1])
	}
	if alerts[1].Message != "Collar Ajustable is low on stock (8 units)" {
		t.Errorf("message = %q", alerts[1].Message)
	}
}

func TestDeriveDeduplicates(t *testing.T) {
	products := []inventory.Product{
		{ID: "1", Name: "Collar", Stock: 2, MinStock: 5, LowStock: true},
		{ID: "1", Name: "Collar", Stock: 2, MinStock: 5, LowStock: true},
	}
	if alerts := Derive(products); len(alerts) != 1 {
		t.Errorf("got %d alerts, want 1 per product", len(alerts))
	}
}

type token string

func (t token) Token() string { return string(t) }

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inventory/notificaciones" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]remoteRecord{
			{ID: 1, IDProducto: 4, NombreProducto: "Arena Premium", StockActual: 0, UmbralMinimo: 12},
			{ID: 2, IDProducto: 2, NombreProducto: "Collar Ajustable", StockActual: 8, UmbralMinimo: 15},
			{ID: 3, IDProducto: 2, NombreProducto: "Collar Ajustable", StockActual: 8, UmbralMinimo: 15},
			{ID: 4, IDProducto: 7, NombreProducto: "Cepillo", StockActual: 1, UmbralMinimo: 3, Eliminada: true},
		})
	}))
	defer srv.Close()

	source := RemoteSource(srv.URL, token("tok"))
	alerts, err := source(context.Background())
	if err != nil {
		t.Fatalf("remote fetch failed: %v", err)
	}

	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2 (dismissed and duplicate records skipped)", len(alerts))
	}
	if alerts[0].Severity != SeverityOutOfStock || alerts[0].ProductID != "4" {
		t.Errorf("first alert = %+v", alerts[0])
	}
	if alerts[1].Message != "Collar Ajustable is low on stock (8 units)" {
		t.Errorf("message = %q", alerts[1].Message)
	}
}

// TestRemoteSourceDecodesDevServer runs the remote strategy against the real
// dev API end to end, so the two sides cannot drift apart on the wire format
// (the notification id in particular is numeric, not a string).
func TestRemoteSourceDecodesDevServer(t *testing.T) {
	srv := httptest.NewServer(devserver.New("test-secret").Router())
	defer srv.Close()

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	defer resp.Body.Close()
	var login struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil || login.Token == "" {
		t.Fatalf("no token from login: %v", err)
	}

	source := RemoteSource(srv.URL, token(login.Token))
	alerts, err := source(context.Background())
	if err != nil {
		t.Fatalf("remote fetch against dev server failed: %v", err)
	}

	// Seed data: Collar (8/15) and Arena (5/12) are low.
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	for _, a := range alerts {
		if a.Severity != SeverityLowStock {
			t.Errorf("alert = %+v, want low-stock severity", a)
		}
		if a.ProductID == "" || a.Message == "" {
			t.Errorf("incomplete alert: %+v", a)
		}
	}
}

func TestRemoteSourceRequiresToken(t *testing.T) {
	source := RemoteSource("http://unused", token(""))
	if _, err := source(context.Background()); err == nil {
		t.Error("missing token should fail locally")
	}
}

func TestPollerUnreadPolicy(t *testing.T) {
	alerts := []Notification{
		{ProductID: "1", Message: "a"},
		{ProductID: "2", Message: "b"},
	}
	source := func(ctx context.Context) ([]Notification, error) {
		return alerts, nil
	}

	p := NewPoller(source, 30*time.Second)
	defer p.Stop()

	p.Refresh()
	if p.Unread() != 2 {
		t.Errorf("unread = %d, want latest list size while panel closed", p.Unread())
	}

	// Opening the panel marks everything read but keeps the items.
	p.SetPanelOpen(true)
	if p.Unread() != 0 {
		t.Errorf("unread = %d after opening panel, want 0", p.Unread())
	}
	if len(p.Items()) != 2 {
		t.Error("opening the panel must not clear the list")
	}

	// While open, refreshes do not re-accumulate unread.
	p.Refresh()
	if p.Unread() != 0 {
		t.Errorf("unread = %d while panel open, want 0", p.Unread())
	}

	// Closed again: the next refresh counts the new list.
	p.SetPanelOpen(false)
	alerts = alerts[:1]
	p.Refresh()
	if p.Unread() != 1 {
		t.Errorf("unread = %d, want 1", p.Unread())
	}
}

func TestPollerKeepsListOnFailedRefresh(t *testing.T) {
	fail := false
	source := func(ctx context.Context) ([]Notification, error) {
		if fail {
			return nil, context.DeadlineExceeded
		}
		return []Notification{{ProductID: "1", Message: "a"}}, nil
	}

	p := NewPoller(source, 30*time.Second)
	defer p.Stop()

	p.Refresh()
	fail = true
	p.Refresh()

	if len(p.Items()) != 1 {
		t.Error("failed refresh should keep the previous list")
	}
}

func TestPollerStopDropsLateResults(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := func(ctx context.Context) ([]Notification, error) {
		close(started)
		<-release
		return []Notification{{ProductID: "1", Message: "late"}}, nil
	}

	p := NewPoller(source, 30*time.Second)

	done := make(chan struct{})
	go func() {
		p.Refresh()
		close(done)
	}()

	<-started
	p.Stop()
	close(release)
	<-done

	if len(p.Items()) != 0 {
		t.Error("a result arriving after Stop must be discarded")
	}
}
