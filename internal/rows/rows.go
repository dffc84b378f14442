// Package rows turns the pages of one display group into export rows.
package rows

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/parser"
	"github.com/takak2166/notion2csv/internal/schema"
	"github.com/takak2166/notion2csv/internal/source"
)

// UntitledPlaceholder is the title of pages with no title text at all.
const UntitledPlaceholder = "Untitled"

// ProbePolicy decides how the canonical names of a group are queried.
type ProbePolicy string

const (
	// ProbeUnion queries every canonical name and merges the results by page id.
	ProbeUnion ProbePolicy = "union"
	// ProbeFirst stops at the first name that matches any page.
	ProbeFirst ProbePolicy = "first"
)

// Valid reports whether p is a known policy
func (p ProbePolicy) Valid() bool {
	return p == ProbeUnion || p == ProbeFirst
}

// Options tune a Builder
type Options struct {
	TitleFallback string
	Probe         ProbePolicy
	// OnBatch is called after every page of query results.
	OnBatch func(group, name string, batch, total int)
}

// Builder builds the rows of display groups
type Builder struct {
	src    source.Source
	parser *parser.Parser
	roles  schema.Roles
	opts   Options
}

// New creates a Builder reading from src
func New(src source.Source, roles schema.Roles, opts Options) *Builder {
	if opts.Probe == "" {
		opts.Probe = ProbeUnion
	}
	return &Builder{
		src:    src,
		parser: parser.New(src),
		roles:  roles,
		opts:   opts,
	}
}

// BuildGroup fetches the pages of g and returns one sorted row per page.
func (b *Builder) BuildGroup(ctx context.Context, g models.DisplayGroup) ([]models.Row, error) {
	pages, err := b.pages(ctx, g)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Row, 0, len(pages))
	for _, page := range pages {
		row, err := b.buildRow(ctx, g.Name, page)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	SortRows(rows, b.roles.Order != "")

	logger.Debug("Built group rows", map[string]interface{}{
		"group": g.Name,
		"rows":  len(rows),
	})
	return rows, nil
}

func (b *Builder) pages(ctx context.Context, g models.DisplayGroup) ([]models.Page, error) {
	var out []models.Page
	seen := make(map[string]struct{})

	for _, name := range ProbeOrder(g) {
		q := models.Query{
			Filter: &models.Filter{
				Property: b.roles.Grouping.Name,
				Type:     b.roles.Grouping.Type,
				Value:    name,
			},
			Sorts: b.sorts(),
		}
		pages, err := source.QueryAll(ctx, b.src, q, func(batch, total int) {
			logger.Info("Pages read", map[string]interface{}{
				"group": g.Name,
				"name":  name,
				"batch": batch,
				"total": total,
			})
			if b.opts.OnBatch != nil {
				b.opts.OnBatch(g.Name, name, batch, total)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query pages for %q: %w", name, err)
		}

		for _, p := range pages {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
		if b.opts.Probe == ProbeFirst && len(pages) > 0 {
			break
		}
	}
	return out, nil
}

func (b *Builder) sorts() []models.Sort {
	switch {
	case b.roles.Order != "":
		return []models.Sort{{Property: b.roles.Order}}
	case b.roles.Title != "":
		return []models.Sort{{Property: b.roles.Title}}
	}
	return nil
}

func (b *Builder) buildRow(ctx context.Context, group string, page models.Page) (models.Row, error) {
	text, err := b.parser.Linearize(ctx, page.ID)
	if err != nil {
		return models.Row{}, fmt.Errorf("failed to read content of page %s: %w", page.ID, err)
	}
	content, kind := parser.ExtractSection(text)

	return models.Row{
		PageID:  page.ID,
		Group:   group,
		Title:   b.title(page),
		Section: propertyString(page, b.roles.Section),
		Order:   propertyString(page, b.roles.Order),
		Content: content,
		Kind:    kind,
	}, nil
}

func (b *Builder) title(page models.Page) string {
	if t := strings.TrimSpace(propertyString(page, b.roles.Title)); t != "" {
		return t
	}
	if t := strings.TrimSpace(propertyString(page, b.opts.TitleFallback)); t != "" {
		return t
	}
	return UntitledPlaceholder
}

func propertyString(page models.Page, name string) string {
	if name == "" {
		return ""
	}
	v, ok := page.Properties[name]
	if !ok || v == nil {
		return ""
	}
	return v.String()
}

// ProbeOrder lists the canonical names of g with the display name first.
func ProbeOrder(g models.DisplayGroup) []string {
	rest := make([]string, 0, len(g.Canonical))
	for _, n := range g.Canonical {
		if n != g.Name {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append([]string{g.Name}, rest...)
}

// SortRows orders rows by numeric order value and then case-insensitive
// title, or by title alone when byOrder is false. Missing or non-numeric
// order values sort last.
func SortRows(rows []models.Row, byOrder bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if byOrder {
			oi, oj := orderValue(rows[i].Order), orderValue(rows[j].Order)
			if oi != oj {
				return oi < oj
			}
		}
		ti, tj := strings.ToLower(rows[i].Title), strings.ToLower(rows[j].Title)
		if ti != tj {
			return ti < tj
		}
		return rows[i].PageID < rows[j].PageID
	})
}

func orderValue(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}
