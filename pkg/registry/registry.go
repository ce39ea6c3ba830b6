// pkg/registry/registry.go
package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "argus-settings/internal/common/errors"
)

// Fetcher retrieves a document over the network. internal/common/http.Client
// implements it.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

//go:embed media.json
var defaultCatalog []byte

// Default returns the catalog shipped with the binary.
func Default() *MediaCatalog {
	cat, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("registry: embedded media catalog is invalid: %v", err))
	}
	return cat
}

// LoadCatalog reads a catalog from a JSON file. Failures are CATALOG_LOAD_FAILED.
func LoadCatalog(path string) (*MediaCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(path, err)
	}
	return cat, nil
}

// IsRemote reports whether location is an http(s) URL rather than a file path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FetchCatalog downloads a catalog from url. Failures are CATALOG_LOAD_FAILED.
func FetchCatalog(ctx context.Context, f Fetcher, url string) (*MediaCatalog, error) {
	data, err := f.GetBytes(ctx, url)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(url, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(url, err)
	}
	return cat, nil
}

// Parse decodes a catalog and rejects entries without identifier or slug, and
// duplicate identifiers or slugs.
func Parse(data []byte) (*MediaCatalog, error) {
	var cat MediaCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, err
	}

	identifiers := make(map[string]bool, len(cat.Media))
	slugs := make(map[string]bool, len(cat.Media))
	for i, m := range cat.Media {
		if m.Identifier == "" || m.Slug == "" {
			return nil, fmt.Errorf("media[%d]: identifier and slug are required", i)
		}
		if identifiers[m.Identifier] {
			return nil, fmt.Errorf("media[%d]: duplicate identifier %s", i, m.Identifier)
		}
		if slugs[m.Slug] {
			return nil, fmt.Errorf("media[%d]: duplicate slug %s", i, m.Slug)
		}
		identifiers[m.Identifier] = true
		slugs[m.Slug] = true
	}
	return &cat, nil
}

// Lookup finds a medium by plugin identifier.
func (c *MediaCatalog) Lookup(identifier string) (Media, bool) {
	for _, m := range c.Media {
		if m.Identifier == identifier {
			return m, true
		}
	}
	return Media{}, false
}

// BySlug finds a medium by slug.
func (c *MediaCatalog) BySlug(slug string) (Media, bool) {
	for _, m := range c.Media {
		if m.Slug == slug {
			return m, true
		}
	}
	return Media{}, false
}

// Slugs returns the catalog slugs in sorted order.
func (c *MediaCatalog) Slugs() []string {
	out := make([]string, 0, len(c.Media))
	for _, m := range c.Media {
		out = append(out, m.Slug)
	}
	sort.Strings(out)
	return out
}
