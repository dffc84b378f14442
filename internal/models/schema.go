package models

// SchemaProperty describes one property of the database schema
type SchemaProperty struct {
	Name    string       `json:"name"`
	Type    PropertyType `json:"type"`
	Options []Option     `json:"options,omitempty"`
}

// Schema is the database schema as seen at the start of a run.
// Properties are kept in a stable order so role resolution is deterministic.
type Schema struct {
	DatabaseID string           `json:"database_id"`
	Title      string           `json:"title"`
	Properties []SchemaProperty `json:"properties"`
}

// Property looks up a property by its exact name
func (s Schema) Property(name string) (SchemaProperty, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return SchemaProperty{}, false
}

// OptionName returns the live name of an option of the named property.
func (s Schema) OptionName(property, optionID string) (string, bool) {
	p, ok := s.Property(property)
	if !ok {
		return "", false
	}
	return p.OptionName(optionID)
}

// OptionName returns the name of the option with id optionID. Options with
// an empty name are treated as missing.
func (p SchemaProperty) OptionName(optionID string) (string, bool) {
	for _, o := range p.Options {
		if o.ID == optionID && o.Name != "" {
			return o.Name, true
		}
	}
	return "", false
}

// Page is one database record
type Page struct {
	ID         string
	Properties map[string]PropertyValue
}

// Filter restricts a page query to pages whose choice property matches Value.
// Select and status compare for equality, multi_select for containment.
type Filter struct {
	Property string
	Type     PropertyType
	Value    string
}

// Sort orders a page query by one property
type Sort struct {
	Property   string
	Descending bool
}

// Query is one request for a page of database results
type Query struct {
	Filter   *Filter
	Sorts    []Sort
	Cursor   string
	PageSize int
}

// PageBatch is one page of query results
type PageBatch struct {
	Pages      []Page
	NextCursor string
	HasMore    bool
}
