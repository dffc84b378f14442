package parser

import (
	"context"
	"fmt"

	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/source"
)

// Parser turns a page's block tree into markdown-like text
type Parser struct {
	lister source.BlockLister
}

// New creates a new Parser reading blocks from lister
func New(lister source.BlockLister) *Parser {
	return &Parser{lister: lister}
}

// Linearize fetches the content tree under rootID and renders it with
// numbered lists renumbered.
func (p *Parser) Linearize(ctx context.Context, rootID string) (string, error) {
	blocks, err := p.FetchTree(ctx, rootID)
	if err != nil {
		return "", err
	}
	return RenumberLists(Render(blocks)), nil
}

// FetchTree lists the children of rootID and, depth first, the children of
// every block that has them. A block whose children cannot be found or read
// is kept without children.
func (p *Parser) FetchTree(ctx context.Context, rootID string) ([]*models.Block, error) {
	logger.Debug("Fetching block tree", map[string]interface{}{
		"root_id": rootID,
	})

	roots, err := source.ListAllChildren(ctx, p.lister, rootID)
	if err != nil {
		if source.IsInaccessible(err) {
			logger.Warn("Page content is not accessible", map[string]interface{}{
				"root_id": rootID,
				"error":   err.Error(),
			})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch content of %s: %w", rootID, err)
	}

	stack := make([]*models.Block, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !b.HasChildren {
			continue
		}

		children, err := source.ListAllChildren(ctx, p.lister, b.ID)
		if err != nil {
			if source.IsInaccessible(err) {
				logger.Warn("Skipping inaccessible block children", map[string]interface{}{
					"block_id": b.ID,
					"error":    err.Error(),
				})
				continue
			}
			return nil, fmt.Errorf("failed to fetch children of %s: %w", b.ID, err)
		}
		b.Children = children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return roots, nil
}
