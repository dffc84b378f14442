package source

import (
	"context"
	"sync"

	"github.com/takak2166/notion2csv/internal/models"
)

// Cached remembers the schema for the lifetime of the value. Page queries and
// block listings are passed through untouched.
type Cached struct {
	Source

	mu     sync.Mutex
	schema *models.Schema
}

// NewCached wraps src
func NewCached(src Source) *Cached {
	return &Cached{Source: src}
}

func (c *Cached) Schema(ctx context.Context) (models.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schema != nil {
		return *c.schema, nil
	}
	s, err := c.Source.Schema(ctx)
	if err != nil {
		return models.Schema{}, err
	}
	c.schema = &s
	return s, nil
}

// Invalidate drops the cached schema so the next call fetches it again
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.schema = nil
	c.mu.Unlock()
}
