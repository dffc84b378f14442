package source

import (
	"context"

	"github.com/takak2166/notion2csv/internal/models"
)

// QueryAll follows the query cursor until the source reports no more
// results. onBatch receives the batch number and the running page total.
func QueryAll(ctx context.Context, src Source, q models.Query, onBatch func(batch, total int)) ([]models.Page, error) {
	var pages []models.Page
	q.Cursor = ""
	for batch := 1; ; batch++ {
		resp, err := src.QueryPages(ctx, q)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Pages...)
		if onBatch != nil {
			onBatch(batch, len(pages))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		q.Cursor = resp.NextCursor
	}
}

// ListAllChildren returns every direct child of blockID.
func ListAllChildren(ctx context.Context, l BlockLister, blockID string) ([]*models.Block, error) {
	var blocks []*models.Block
	cursor := ""
	for {
		resp, err := l.ListBlockChildren(ctx, blockID, cursor)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Blocks...)
		if !resp.HasMore || resp.NextCursor == "" {
			return blocks, nil
		}
		cursor = resp.NextCursor
	}
}
