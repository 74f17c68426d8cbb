package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/net/context/ctxhttp"
)

// Assets loads and memoizes parsed font programs. Each (family, weight)
// is fetched and parsed at most once per process; subsequent loads hit
// the cache. The embedded Go fonts back the default family so a usable
// face always exists.
type Assets struct {
	mu     sync.Mutex
	cache  map[string]*sfnt.Font
	client *http.Client

	// dir, when set, is a local directory where fetched font files are
	// written so later processes skip the network.
	dir string
}

// NewAssets creates an asset loader. dir may be empty to skip on-disk
// caching of fetched files.
func NewAssets(dir string, timeout time.Duration) *Assets {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Assets{
		cache:  make(map[string]*sfnt.Font),
		client: &http.Client{Timeout: timeout},
		dir:    dir,
	}
}

// Load returns the parsed font program for a resolution, fetching it on
// first use. Default-family resolutions are served from the embedded Go
// fonts without touching the network.
func (a *Assets) Load(ctx context.Context, res Resolution) (*sfnt.Font, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := res.Key()
	if f, ok := a.cache[key]; ok {
		return f, nil
	}

	data, err := a.fetchLocked(ctx, res)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", key, err)
	}

	a.cache[key] = f
	return f, nil
}

// Default returns the embedded default font program for a weight:
// Go Bold for 600 and above, Go Regular otherwise. Never fails after
// the first successful parse.
func (a *Assets) Default(weight int) (*sfnt.Font, error) {
	return a.Load(context.Background(), DefaultResolution(weight))
}

func (a *Assets) fetchLocked(ctx context.Context, res Resolution) ([]byte, error) {
	if res.Family == DefaultFamily {
		if res.Weight >= 600 {
			return gobold.TTF, nil
		}
		return goregular.TTF, nil
	}

	if res.File == "" {
		return nil, fmt.Errorf("no asset source for %s %d", res.Family, res.Weight)
	}

	if !strings.HasPrefix(res.File, "http://") && !strings.HasPrefix(res.File, "https://") {
		data, err := os.ReadFile(res.File)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		return data, nil
	}

	if a.dir != "" {
		if data, err := os.ReadFile(a.localPath(res)); err == nil {
			return data, nil
		}
	}

	resp, err := ctxhttp.Get(ctx, a.client, res.File)
	if err != nil {
		return nil, fmt.Errorf("fetching font %s %d: %w", res.Family, res.Weight, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching font %s %d: unexpected status %s", res.Family, res.Weight, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading font response: %w", err)
	}

	if a.dir != "" {
		// Best effort cache write.
		_ = os.WriteFile(a.localPath(res), data, 0o644)
	}

	return data, nil
}

// localPath derives the on-disk cache name, mirroring the
// "<Family no spaces>-<weight>.ttf" convention.
func (a *Assets) localPath(res Resolution) string {
	name := strings.ReplaceAll(res.Family, " ", "")
	return fmt.Sprintf("%s/%s-%d.ttf", a.dir, name, res.Weight)
}
