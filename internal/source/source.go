// Package source defines the data-source contract the exporter reads from,
// together with the pagination, retry and caching layers wrapped around it.
package source

import (
	"context"

	"github.com/takak2166/notion2csv/internal/models"
)

//go:generate mockgen -source=source.go -destination=mock_source/mock_source.go -package=mock_source
type (
	// BlockLister lists one page of a block's direct children.
	BlockLister interface {
		ListBlockChildren(ctx context.Context, blockID, cursor string) (models.BlockBatch, error)
	}

	// Source is a read-only document database.
	Source interface {
		BlockLister
		Schema(ctx context.Context) (models.Schema, error)
		QueryPages(ctx context.Context, q models.Query) (models.PageBatch, error)
	}
)
