package models

import (
	"strconv"
	"strings"
)

// PropertyType is the type tag of a database property
type PropertyType string

const (
	PropertyNumber      PropertyType = "number"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyStatus      PropertyType = "status"
	PropertyRichText    PropertyType = "rich_text"
	PropertyTitle       PropertyType = "title"
	PropertyDate        PropertyType = "date"
	PropertyURL         PropertyType = "url"
	PropertyEmail       PropertyType = "email"
	PropertyPeople      PropertyType = "people"
)

// IsChoice reports whether values of this type reference schema options.
func (t PropertyType) IsChoice() bool {
	return t == PropertySelect || t == PropertyMultiSelect || t == PropertyStatus
}

// Option is one choice of a select, multi_select or status property.
// ID is stable across renames, Name is not.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Person is an entry of a people property
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PropertyValue is the closed set of property payloads a page can carry.
// Every variant renders itself to the flat string used in exported rows.
type PropertyValue interface {
	Type() PropertyType
	String() string
}

type NumberValue struct{ Number *float64 }

type SelectValue struct{ Option *Option }

type MultiSelectValue struct{ Options []Option }

type StatusValue struct{ Option *Option }

type RichTextValue struct{ Spans []RichText }

type TitleValue struct{ Spans []RichText }

type DateValue struct{ Start, End string }

type URLValue struct{ URL string }

type EmailValue struct{ Email string }

type PeopleValue struct{ People []Person }

// UnsupportedValue keeps the raw type tag of properties outside the
// recognised set so callers can tell them apart from empty values.
type UnsupportedValue struct{ Kind string }

func (NumberValue) Type() PropertyType      { return PropertyNumber }
func (SelectValue) Type() PropertyType      { return PropertySelect }
func (MultiSelectValue) Type() PropertyType { return PropertyMultiSelect }
func (StatusValue) Type() PropertyType      { return PropertyStatus }
func (RichTextValue) Type() PropertyType    { return PropertyRichText }
func (TitleValue) Type() PropertyType       { return PropertyTitle }
func (DateValue) Type() PropertyType        { return PropertyDate }
func (URLValue) Type() PropertyType         { return PropertyURL }
func (EmailValue) Type() PropertyType       { return PropertyEmail }
func (PeopleValue) Type() PropertyType      { return PropertyPeople }
func (v UnsupportedValue) Type() PropertyType {
	return PropertyType(v.Kind)
}

func (v NumberValue) String() string {
	if v.Number == nil {
		return ""
	}
	return strconv.FormatFloat(*v.Number, 'f', -1, 64)
}

func (v SelectValue) String() string {
	if v.Option == nil {
		return ""
	}
	return v.Option.Name
}

func (v MultiSelectValue) String() string {
	names := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		names = append(names, o.Name)
	}
	return strings.Join(names, ", ")
}

func (v StatusValue) String() string {
	if v.Option == nil {
		return ""
	}
	return v.Option.Name
}

func (v RichTextValue) String() string { return PlainText(v.Spans) }

func (v TitleValue) String() string { return PlainText(v.Spans) }

func (v DateValue) String() string {
	if v.End != "" {
		return v.Start + ".." + v.End
	}
	return v.Start
}

func (v URLValue) String() string { return v.URL }

func (v EmailValue) String() string { return v.Email }

func (v PeopleValue) String() string {
	names := make([]string, 0, len(v.People))
	for _, p := range v.People {
		switch {
		case p.Name != "":
			names = append(names, p.Name)
		case p.Email != "":
			names = append(names, p.Email)
		}
	}
	return strings.Join(names, ", ")
}

func (UnsupportedValue) String() string { return "" }

// SelectedOptions returns the options referenced by a choice value.
func SelectedOptions(v PropertyValue) []Option {
	switch val := v.(type) {
	case SelectValue:
		if val.Option != nil {
			return []Option{*val.Option}
		}
	case StatusValue:
		if val.Option != nil {
			return []Option{*val.Option}
		}
	case MultiSelectValue:
		return val.Options
	}
	return nil
}
