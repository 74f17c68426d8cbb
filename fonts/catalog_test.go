package fonts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOpenCatalog_MissingSnapshotIsEmpty(t *testing.T) {
	c, err := OpenCatalog(CatalogConfig{Path: filepath.Join(t.TempDir(), "absent.json")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty catalog, got %d entries", c.Len())
	}
}

func TestOpenCatalog_LoadsKeyedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	data := `{"Roboto":{"category":"sans-serif","files":{"regular":"r.ttf","700":"b.ttf"}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := OpenCatalog(CatalogConfig{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, ok := c.Snapshot()["Roboto"]
	if !ok {
		t.Fatal("Roboto missing from snapshot")
	}
	if e.Family != "Roboto" {
		t.Errorf("family not backfilled from key: %q", e.Family)
	}
	if len(e.Weights()) != 2 {
		t.Errorf("unexpected weights: %v", e.Weights())
	}
}

func TestCatalog_RefreshFromAPIShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"family":"Lora","category":"serif","files":{"regular":"r.ttf"}}]}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := OpenCatalog(CatalogConfig{Path: path, URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if _, ok := c.Snapshot()["Lora"]; !ok {
		t.Error("Lora missing after refresh")
	}

	// The snapshot must also have been cached on disk.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected on-disk snapshot after refresh: %v", err)
	}
}

func TestCatalog_RefreshErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := OpenCatalog(CatalogConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Refresh(context.Background()); err == nil {
		t.Error("expected error for non-200 status")
	}

	unconfigured := NewCatalogFromEntries(nil)
	if err := unconfigured.Refresh(context.Background()); err == nil {
		t.Error("expected error when refresh is not configured")
	}
}

func TestCatalog_ConcurrentReadsDuringRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"family":"Inter","category":"sans-serif","files":{"regular":"r.ttf"}}]}`))
	}))
	defer srv.Close()

	c, err := OpenCatalog(CatalogConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = c.Snapshot()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
	}
	wg.Wait()

	if _, ok := c.Snapshot()["Inter"]; !ok {
		t.Error("Inter missing after concurrent refreshes")
	}
}
