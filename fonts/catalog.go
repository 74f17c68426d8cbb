package fonts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/context/ctxhttp"
)

// Entry describes one catalog family: its classification category and
// the variant files available for it. Variant keys follow the Google
// Fonts convention: "regular" for 400, a bare number ("700") for other
// weights, and an "italic" suffix for italic variants (ignored here).
type Entry struct {
	Family   string            `json:"family"`
	Category string            `json:"category"`
	Files    map[string]string `json:"files"`
}

// Weights returns the sorted unique numeric weights the entry offers.
func (e Entry) Weights() []int {
	set := make(map[int]bool)
	for variant := range e.Files {
		if w, ok := variantWeight(variant); ok {
			set[w] = true
		}
	}

	weights := make([]int, 0, len(set))
	for w := range set {
		weights = append(weights, w)
	}
	sort.Ints(weights)
	return weights
}

// File returns the asset source for a numeric weight.
func (e Entry) File(weight int) (string, bool) {
	src, ok := e.Files[weightVariant(weight)]
	return src, ok
}

// variantWeight parses a variant key into a numeric weight. Italic-only
// variants resolve to their weight; non-weight keys are skipped.
func variantWeight(variant string) (int, bool) {
	v := strings.TrimSuffix(variant, "italic")
	if v == "" || v == "regular" {
		return 400, true
	}
	w, err := strconv.Atoi(v)
	if err != nil || w < 100 || w > 900 {
		return 0, false
	}
	return w, true
}

// weightVariant maps a numeric weight to its variant key.
func weightVariant(weight int) string {
	if weight == 400 {
		return "regular"
	}
	return strconv.Itoa(weight)
}

// Snapshot is an immutable view of the catalog, keyed by family name.
// Resolution is a pure function of a snapshot, so repeated calls against
// the same snapshot always return identical results.
type Snapshot map[string]Entry

// CatalogConfig configures catalog storage and refresh.
type CatalogConfig struct {
	// Path is the local JSON snapshot. Loaded on Open when present;
	// rewritten after a successful refresh (last writer wins — the
	// catalog is idempotently regenerable).
	Path string

	// URL is the metadata endpoint used by Refresh. Empty disables
	// refresh; lookups then rely entirely on the local snapshot.
	URL string

	// Timeout bounds each refresh fetch. Defaults to 20 seconds.
	Timeout time.Duration
}

// Catalog is the font metadata registry. Reads are lock-free against
// immutable snapshots; Refresh is guarded by a mutex so only one writer
// regenerates the catalog at a time.
type Catalog struct {
	mu      sync.RWMutex
	entries Snapshot

	path    string
	url     string
	timeout time.Duration
	client  *http.Client
}

// OpenCatalog builds a catalog from the config, loading the local
// snapshot when it exists. A missing snapshot is not an error; the
// catalog starts empty and can be populated by Refresh.
func OpenCatalog(cfg CatalogConfig) (*Catalog, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	c := &Catalog{
		entries: Snapshot{},
		path:    cfg.Path,
		url:     cfg.URL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}

	if cfg.Path != "" {
		if data, err := os.ReadFile(cfg.Path); err == nil {
			entries, err := parseCatalog(data)
			if err != nil {
				return nil, fmt.Errorf("parsing catalog snapshot %s: %w", cfg.Path, err)
			}
			c.entries = entries
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading catalog snapshot: %w", err)
		}
	}

	return c, nil
}

// NewCatalogFromEntries builds an in-memory catalog, used by tests and
// by callers that obtain metadata elsewhere.
func NewCatalogFromEntries(entries []Entry) *Catalog {
	snap := make(Snapshot, len(entries))
	for _, e := range entries {
		snap[e.Family] = e
	}
	return &Catalog{entries: snap, timeout: 20 * time.Second, client: http.DefaultClient}
}

// Snapshot returns the current immutable catalog view.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// Len returns the number of families in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Refresh fetches fresh metadata from the configured URL and replaces
// the snapshot. The fetch is bounded by the catalog timeout on top of
// any caller deadline. When a local path is configured the new snapshot
// is also written to disk; a disk write failure does not fail the
// refresh, since the in-memory snapshot is already updated.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("catalog refresh not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := ctxhttp.Get(ctx, c.client, c.url)
	if err != nil {
		return fmt.Errorf("fetching font catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching font catalog: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading font catalog response: %w", err)
	}

	entries, err := parseCatalog(data)
	if err != nil {
		return fmt.Errorf("parsing font catalog response: %w", err)
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	if c.path != "" {
		// Best effort: the snapshot on disk is a cache, not the source
		// of truth for this run.
		_ = os.WriteFile(c.path, data, 0o644)
	}

	return nil
}

// parseCatalog accepts either the family-keyed map shape used for local
// snapshots or the raw webfonts API response ({"items": [...]}).
func parseCatalog(data []byte) (Snapshot, error) {
	var keyed map[string]Entry
	if err := json.Unmarshal(data, &keyed); err == nil && len(keyed) > 0 {
		for family, e := range keyed {
			if e.Family == "" {
				e.Family = family
				keyed[family] = e
			}
		}
		return keyed, nil
	}

	var api struct {
		Items []Entry `json:"items"`
	}
	if err := json.Unmarshal(data, &api); err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(api.Items))
	for _, e := range api.Items {
		snap[e.Family] = e
	}
	return snap, nil
}
