package groups

import (
	"context"
	"fmt"

	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/schema"
	"github.com/takak2166/notion2csv/internal/source"
)

// Index resolves the property roles of the database and reads every page to
// build the display group index.
func Index(ctx context.Context, src source.Source, groupingName string, aliases Aliases) (schema.Roles, []models.DisplayGroup, error) {
	s, err := src.Schema(ctx)
	if err != nil {
		return schema.Roles{}, nil, fmt.Errorf("failed to read database schema: %w", err)
	}
	roles, err := schema.Resolve(s, groupingName)
	if err != nil {
		return schema.Roles{}, nil, err
	}
	logger.Info("Resolved properties", roles.Fields())

	pages, err := source.QueryAll(ctx, src, models.Query{}, func(batch, total int) {
		logger.Info("Pages read", map[string]interface{}{
			"batch": batch,
			"total": total,
		})
	})
	if err != nil {
		return schema.Roles{}, nil, fmt.Errorf("failed to read pages: %w", err)
	}

	index := Build(pages, roles, aliases)
	logger.Info("Group index built", map[string]interface{}{
		"pages":  len(pages),
		"groups": len(index),
	})
	return roles, index, nil
}
