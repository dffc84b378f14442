// Package groups builds the display group index of the grouping property.
package groups

import (
	"fmt"
	"sort"

	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/schema"
	"github.com/takak2166/notion2csv/internal/textnorm"
)

// DefaultAliases maps renamed course names to the name they are shown under.
var DefaultAliases = Aliases{
	"Üzleti Modellek":      "Milyen vállalkozást indíts",
	"Marketing rendszerek": "Ügyfélszerző marketing rendszerek",
}

// Aliases maps an old option name to its display name
type Aliases map[string]string

// Display returns the display name for name. Exact matches are preferred
// over normalized ones.
func (a Aliases) Display(name string) string {
	if dst, ok := a[name]; ok {
		return dst
	}
	key := textnorm.Key(name)
	if key == "" {
		return name
	}
	for _, src := range a.sortedSources() {
		if textnorm.Key(src) == key {
			return a[src]
		}
	}
	return name
}

// Sources returns every alias whose display name is display.
func (a Aliases) Sources(display string) []string {
	var out []string
	for _, src := range a.sortedSources() {
		if textnorm.Equal(a[src], display) {
			out = append(out, src)
		}
	}
	return out
}

func (a Aliases) sortedSources() []string {
	srcs := make([]string, 0, len(a))
	for src := range a {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	return srcs
}

type optionStats struct {
	count int
	seen  map[string]struct{}
}

// Build tallies the grouping option of every page and folds the options into
// display groups, sorted by count descending.
func Build(pages []models.Page, roles schema.Roles, aliases Aliases) []models.DisplayGroup {
	stats := make(map[string]*optionStats)
	for _, page := range pages {
		v, ok := page.Properties[roles.Grouping.Name]
		if !ok {
			continue
		}
		for _, opt := range models.SelectedOptions(v) {
			if opt.ID == "" {
				continue
			}
			st, ok := stats[opt.ID]
			if !ok {
				st = &optionStats{seen: make(map[string]struct{})}
				stats[opt.ID] = st
			}
			st.count++
			if opt.Name != "" {
				st.seen[opt.Name] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	byName := make(map[string]*models.DisplayGroup)
	canon := make(map[string]map[string]struct{})
	var order []string
	for _, id := range ids {
		st := stats[id]
		current := currentName(roles.Grouping, id, st.seen)
		display := aliases.Display(current)

		g, ok := byName[display]
		if !ok {
			g = &models.DisplayGroup{Name: display}
			byName[display] = g
			canon[display] = make(map[string]struct{})
			order = append(order, display)
		}
		g.Count += st.count

		names := canon[display]
		names[current] = struct{}{}
		names[display] = struct{}{}
		for n := range st.seen {
			names[n] = struct{}{}
		}
		for _, src := range aliases.Sources(display) {
			names[src] = struct{}{}
		}
	}

	out := make([]models.DisplayGroup, 0, len(order))
	for _, name := range order {
		g := byName[name]
		for n := range canon[name] {
			g.Canonical = append(g.Canonical, n)
		}
		sort.Strings(g.Canonical)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// currentName prefers the live schema name, then the alphabetically first
// name seen on a page, then a placeholder built from the option id.
func currentName(p models.SchemaProperty, id string, seen map[string]struct{}) string {
	if name, ok := p.OptionName(id); ok {
		return name
	}
	if len(seen) > 0 {
		names := make([]string, 0, len(seen))
		for n := range seen {
			names = append(names, n)
		}
		sort.Strings(names)
		return names[0]
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Unknown option (%s)", short)
}

// Ascending returns the groups in export order: smallest first, ties by name.
func Ascending(groups []models.DisplayGroup) []models.DisplayGroup {
	out := make([]models.DisplayGroup, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Find looks a group up by display name, exactly first and then normalized.
func Find(groups []models.DisplayGroup, name string) (models.DisplayGroup, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	for _, g := range groups {
		if textnorm.Equal(g.Name, name) {
			return g, true
		}
	}
	return models.DisplayGroup{}, false
}
