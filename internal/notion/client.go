package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/source"
)

// DefaultPageSize is the largest page the Notion API hands out
const DefaultPageSize = 100

var (
	ErrMissingToken      = errors.New("notion API key is not set")
	ErrMissingDatabaseID = errors.New("notion database ID is not set")
)

// Client reads one Notion database through the notionapi SDK and exposes it
// as a source.Source.
type Client struct {
	client     NotionClient
	databaseID notionapi.DatabaseID
	pageSize   int
}

var _ source.Source = (*Client)(nil)

// New creates a new Notion client for the given database
func New(apiKey, databaseID string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingToken
	}
	if databaseID == "" {
		return nil, ErrMissingDatabaseID
	}

	notionClient := notionapi.NewClient(notionapi.Token(apiKey))
	return &Client{
		client:     newNotionClientAdapter(notionClient),
		databaseID: notionapi.DatabaseID(databaseID),
		pageSize:   DefaultPageSize,
	}, nil
}

// NewWithClient builds a Client on top of an existing NotionClient
func NewWithClient(nc NotionClient, databaseID string) *Client {
	return &Client{
		client:     nc,
		databaseID: notionapi.DatabaseID(databaseID),
		pageSize:   DefaultPageSize,
	}
}

// Schema fetches the database schema
func (c *Client) Schema(ctx context.Context) (models.Schema, error) {
	logger.Debug("Fetching database schema", map[string]interface{}{
		"database_id": string(c.databaseID),
	})

	db, err := c.client.Database().Get(ctx, c.databaseID)
	if err != nil {
		return models.Schema{}, fmt.Errorf("failed to get database: %w", convertError(err))
	}

	s, err := convertSchema(db)
	if err != nil {
		return models.Schema{}, fmt.Errorf("failed to read database schema: %w", err)
	}
	s.DatabaseID = string(c.databaseID)
	return s, nil
}

// QueryPages fetches one page of database results
func (c *Client) QueryPages(ctx context.Context, q models.Query) (models.PageBatch, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	req := &notionapi.DatabaseQueryRequest{
		StartCursor: notionapi.Cursor(q.Cursor),
		PageSize:    pageSize,
	}
	if q.Filter != nil {
		f, err := buildFilter(*q.Filter)
		if err != nil {
			return models.PageBatch{}, err
		}
		req.Filter = f
	}
	for _, s := range q.Sorts {
		dir := notionapi.SortOrderASC
		if s.Descending {
			dir = notionapi.SortOrderDESC
		}
		req.Sorts = append(req.Sorts, notionapi.SortObject{
			Property:  s.Property,
			Direction: dir,
		})
	}

	resp, err := c.client.Database().Query(ctx, c.databaseID, req)
	if err != nil {
		return models.PageBatch{}, fmt.Errorf("failed to query database: %w", convertError(err))
	}

	batch := models.PageBatch{
		HasMore:    resp.HasMore,
		NextCursor: string(resp.NextCursor),
	}
	for i := range resp.Results {
		page, err := convertPage(&resp.Results[i])
		if err != nil {
			return models.PageBatch{}, fmt.Errorf("failed to read page %s: %w", resp.Results[i].ID, err)
		}
		batch.Pages = append(batch.Pages, page)
	}
	return batch, nil
}

// ListBlockChildren fetches one page of a block's direct children
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string) (models.BlockBatch, error) {
	resp, err := c.client.Block().GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    c.pageSize,
	})
	if err != nil {
		return models.BlockBatch{}, fmt.Errorf("failed to list children of %s: %w", blockID, convertError(err))
	}

	batch := models.BlockBatch{
		HasMore:    resp.HasMore,
		NextCursor: string(resp.NextCursor),
	}
	for _, b := range resp.Results {
		block, err := convertBlock(b)
		if err != nil {
			return models.BlockBatch{}, fmt.Errorf("failed to read block under %s: %w", blockID, err)
		}
		batch.Blocks = append(batch.Blocks, block)
	}
	return batch, nil
}

// buildFilter picks the filter condition matching the grouping property type
func buildFilter(f models.Filter) (notionapi.Filter, error) {
	pf := &notionapi.PropertyFilter{Property: f.Property}
	switch f.Type {
	case models.PropertySelect:
		pf.Select = &notionapi.SelectFilterCondition{Equals: f.Value}
	case models.PropertyMultiSelect:
		pf.MultiSelect = &notionapi.MultiSelectFilterCondition{Contains: f.Value}
	case models.PropertyStatus:
		pf.Status = &notionapi.StatusFilterCondition{Equals: f.Value}
	default:
		return nil, fmt.Errorf("cannot filter on %s property %q", f.Type, f.Property)
	}
	return pf, nil
}

// convertError maps SDK errors onto source.HTTPError so retry decisions can
// inspect the status code.
func convertError(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return &source.HTTPError{
			Status:  apiErr.Status,
			Message: fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Message),
		}
	}
	return err
}
