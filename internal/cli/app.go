package cli

import (
	"context"
	"fmt"

	"github.com/takak2166/notion2csv/internal/checkpoint"
	"github.com/takak2166/notion2csv/internal/config"
	"github.com/takak2166/notion2csv/internal/export"
	"github.com/takak2166/notion2csv/internal/groups"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/notion"
	"github.com/takak2166/notion2csv/internal/rows"
	"github.com/takak2166/notion2csv/internal/schema"
	"github.com/takak2166/notion2csv/internal/source"
)

// catalog is the resolved view of the database shared by the commands that
// talk to Notion.
type catalog struct {
	src    source.Source
	roles  schema.Roles
	groups []models.DisplayGroup
}

func loadCatalog(ctx context.Context, c *config.Config) (*catalog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	client, err := notion.New(c.Token, c.DatabaseID)
	if err != nil {
		return nil, err
	}
	src := source.NewCached(source.NewRetrying(client, c.RetryPolicy()))

	roles, index, err := groups.Index(ctx, src, c.PropertyName, c.AliasMap())
	if err != nil {
		return nil, err
	}
	return &catalog{src: src, roles: roles, groups: index}, nil
}

func openStore(c *config.Config) (*checkpoint.Store, error) {
	if c.DatabaseID == "" {
		return nil, config.ErrMissingDatabase
	}
	store, err := checkpoint.Open(c.CheckpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store %s: %w", c.CheckpointPath, err)
	}
	return store, nil
}

func newEngine(c *config.Config, cat *catalog, store *checkpoint.Store) *export.Engine {
	builder := rows.New(cat.src, cat.roles, c.RowOptions())
	return export.New(store, builder, export.Config{
		DatabaseID:    c.DatabaseID,
		PropertyName:  c.PropertyName,
		Groups:        cat.groups,
		Retry:         c.RetryPolicy(),
		MaxCellLength: c.MaxCellLength,
	})
}

// modes returns the modes named by flag, or every mode when it is empty.
func modes(flag string) ([]models.ExportMode, error) {
	if flag == "" {
		return []models.ExportMode{models.ModeArchive, models.ModeUnified, models.ModeWorkbook}, nil
	}
	m := models.ExportMode(flag)
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %q", export.ErrInvalidMode, flag)
	}
	return []models.ExportMode{m}, nil
}
