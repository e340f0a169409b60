package preview

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"uistudio/internal/domain/entity"
	"uistudio/internal/infrastructure/metrics"
)

// DefaultCacheSize is the number of rendered documents kept by a Renderer.
const DefaultCacheSize = 256

// Renderer memoizes Render. Compilation is pure, so a cached document is
// always identical to a fresh one.
type Renderer struct {
	cache  *lru.Cache[string, string]
	logger *slog.Logger
}

func NewRenderer(size int, logger *slog.Logger) (*Renderer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create preview cache: %w", err)
	}
	return &Renderer{cache: cache, logger: logger}, nil
}

func (r *Renderer) Render(source string, stack entity.TechStack) string {
	key := cacheKey(source, stack)
	if doc, ok := r.cache.Get(key); ok {
		metrics.IncPreviewCache("hit")
		return doc
	}
	metrics.IncPreviewCache("miss")

	start := time.Now()
	doc := Render(source, stack)
	elapsed := time.Since(start)
	metrics.ObservePreviewCompile(stack.String(), elapsed)
	r.logger.Debug("preview compiled", "stack", stack, "source_bytes", len(source), "doc_bytes", len(doc), "elapsed", elapsed)

	r.cache.Add(key, doc)
	return doc
}

// Len reports the number of cached documents.
func (r *Renderer) Len() int { return r.cache.Len() }

func cacheKey(source string, stack entity.TechStack) string {
	sum := sha256.Sum256([]byte(stack.String() + "\x00" + source))
	return hex.EncodeToString(sum[:])
}
