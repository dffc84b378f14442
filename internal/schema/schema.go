// Package schema decides which database properties play the grouping, title,
// section and order roles of an export.
package schema

import (
	"errors"
	"fmt"

	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/textnorm"
)

var (
	ErrGroupingPropertyNotFound = errors.New("grouping property not found in database schema")
	ErrUnsupportedGroupingType  = errors.New("grouping property must be select, multi_select or status")
)

var (
	sectionNames = textnorm.NewSet(
		"szakasz", "szekció", "section", "modul", "module", "fejezet", "chapter", "rész", "part",
	)
	orderNames = textnorm.NewSet(
		"sorszám", "sorrend", "order", "sequence", "rank", "index", "pozíció", "position",
	)
)

// Roles names the property used for each export role. Section and Order may
// be empty when the schema has no suitable property.
type Roles struct {
	Grouping models.SchemaProperty
	Title    string
	Section  string
	Order    string
}

// Fields returns the roles as log fields
func (r Roles) Fields() map[string]interface{} {
	return map[string]interface{}{
		"grouping":      r.Grouping.Name,
		"grouping_type": string(r.Grouping.Type),
		"title":         r.Title,
		"section":       r.Section,
		"order":         r.Order,
	}
}

// Resolve assigns the roles for groupingName within s.
func Resolve(s models.Schema, groupingName string) (Roles, error) {
	grouping, ok := findGrouping(s, groupingName)
	if !ok {
		return Roles{}, fmt.Errorf("%w: %q", ErrGroupingPropertyNotFound, groupingName)
	}
	if !grouping.Type.IsChoice() {
		return Roles{}, fmt.Errorf("%w: %q is %s", ErrUnsupportedGroupingType, grouping.Name, grouping.Type)
	}

	return Roles{
		Grouping: grouping,
		Title:    titleProperty(s),
		Section:  sectionProperty(s, grouping.Name),
		Order:    orderProperty(s),
	}, nil
}

func findGrouping(s models.Schema, name string) (models.SchemaProperty, bool) {
	if p, ok := s.Property(name); ok {
		return p, true
	}
	for _, p := range s.Properties {
		if textnorm.Equal(p.Name, name) {
			return p, true
		}
	}
	return models.SchemaProperty{}, false
}

func titleProperty(s models.Schema) string {
	for _, p := range s.Properties {
		if p.Type == models.PropertyTitle {
			return p.Name
		}
	}
	return ""
}

func sectionProperty(s models.Schema, grouping string) string {
	for _, p := range s.Properties {
		if sectionNames.Contains(p.Name) {
			return p.Name
		}
	}
	for _, p := range s.Properties {
		if p.Name != grouping && p.Type.IsChoice() {
			return p.Name
		}
	}
	return ""
}

func orderProperty(s models.Schema) string {
	for _, p := range s.Properties {
		if orderNames.Contains(p.Name) {
			return p.Name
		}
	}
	for _, p := range s.Properties {
		if p.Type == models.PropertyNumber {
			return p.Name
		}
	}
	return ""
}
