package widgets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-specviz/pkg/jsonschema"
	"github.com/goliatone/go-specviz/pkg/schema"
)

// DefaultPreviewCacheSize bounds the number of nested previews kept.
const DefaultPreviewCacheSize = 128

// PreviewFunc renders a form for a nested schema fragment.
type PreviewFunc func(fragment *schema.Schema) ([]byte, error)

// PreviewCache memoises nested-schema preview forms by content hash.
type PreviewCache struct {
	cache *lru.Cache[string, []byte]
}

// NewPreviewCache allocates a cache holding up to size previews.
func NewPreviewCache(size int) (*PreviewCache, error) {
	if size <= 0 {
		size = DefaultPreviewCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("widgets: preview cache: %w", err)
	}
	return &PreviewCache{cache: cache}, nil
}

// Preview normalises value as a schema fragment and renders it through fn,
// reusing the cached output for identical content.
func (c *PreviewCache) Preview(value any, fn PreviewFunc) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("widgets: nothing to preview")
	}
	key, err := contentKey(value)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if out, ok := c.cache.Get(key); ok {
			return out, nil
		}
	}

	fragment, err := jsonschema.NormalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("widgets: preview schema: %w", err)
	}
	out, err := fn(fragment)
	if err != nil {
		return nil, err
	}
	if c != nil {
		c.cache.Add(key, out)
	}
	return out, nil
}

// Len reports the number of cached previews.
func (c *PreviewCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

func contentKey(value any) (string, error) {
	raw, err := json.Marshal(jsonschema.Plain(value))
	if err != nil {
		return "", fmt.Errorf("widgets: hash preview: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
