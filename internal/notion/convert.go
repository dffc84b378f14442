package notion

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/takak2166/notion2csv/internal/models"
)

// The SDK models every property and block type as its own struct. Rather
// than type-switching over all of them, values are re-encoded to their wire
// JSON and decoded into the few fields the exporter reads.

type rawOptions struct {
	Options []models.Option `json:"options"`
}

type rawPropertyConfig struct {
	Type        string      `json:"type"`
	Select      *rawOptions `json:"select"`
	MultiSelect *rawOptions `json:"multi_select"`
	Status      *rawOptions `json:"status"`
}

type rawDate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type rawUser struct {
	Name   string `json:"name"`
	Person *struct {
		Email string `json:"email"`
	} `json:"person"`
}

type rawProperty struct {
	Type        string            `json:"type"`
	Number      *float64          `json:"number"`
	Select      *models.Option    `json:"select"`
	MultiSelect []models.Option   `json:"multi_select"`
	Status      *models.Option    `json:"status"`
	RichText    []models.RichText `json:"rich_text"`
	Title       []models.RichText `json:"title"`
	Date        *rawDate          `json:"date"`
	URL         string            `json:"url"`
	Email       string            `json:"email"`
	People      []rawUser         `json:"people"`
}

type rawBlock struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
}

type rawBlockPayload struct {
	RichText   []models.RichText `json:"rich_text"`
	Caption    []models.RichText `json:"caption"`
	Checked    bool              `json:"checked"`
	Language   string            `json:"language"`
	Expression string            `json:"expression"`
	Icon       *struct {
		Emoji string `json:"emoji"`
	} `json:"icon"`
}

func reencode(v interface{}, out interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func convertSchema(db *notionapi.Database) (models.Schema, error) {
	var title []models.RichText
	if err := reencode(db.Title, &title); err != nil {
		return models.Schema{}, err
	}
	s := models.Schema{Title: models.PlainText(title)}

	names := make([]string, 0, len(db.Properties))
	for name := range db.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var raw rawPropertyConfig
		if err := reencode(db.Properties[name], &raw); err != nil {
			return models.Schema{}, err
		}
		p := models.SchemaProperty{Name: name, Type: models.PropertyType(raw.Type)}
		for _, opts := range []*rawOptions{raw.Select, raw.MultiSelect, raw.Status} {
			if opts != nil {
				p.Options = append(p.Options, opts.Options...)
			}
		}
		s.Properties = append(s.Properties, p)
	}
	return s, nil
}

func convertPage(page *notionapi.Page) (models.Page, error) {
	out := models.Page{
		ID:         string(page.ID),
		Properties: make(map[string]models.PropertyValue, len(page.Properties)),
	}
	for name, prop := range page.Properties {
		var raw rawProperty
		if err := reencode(prop, &raw); err != nil {
			return models.Page{}, err
		}
		out.Properties[name] = convertProperty(raw)
	}
	return out, nil
}

func optionOrNil(o *models.Option) *models.Option {
	if o == nil || (o.ID == "" && o.Name == "") {
		return nil
	}
	return o
}

func convertProperty(raw rawProperty) models.PropertyValue {
	switch models.PropertyType(raw.Type) {
	case models.PropertyNumber:
		return models.NumberValue{Number: raw.Number}
	case models.PropertySelect:
		return models.SelectValue{Option: optionOrNil(raw.Select)}
	case models.PropertyMultiSelect:
		return models.MultiSelectValue{Options: raw.MultiSelect}
	case models.PropertyStatus:
		return models.StatusValue{Option: optionOrNil(raw.Status)}
	case models.PropertyRichText:
		return models.RichTextValue{Spans: raw.RichText}
	case models.PropertyTitle:
		return models.TitleValue{Spans: raw.Title}
	case models.PropertyDate:
		if raw.Date == nil {
			return models.DateValue{}
		}
		return models.DateValue{Start: shortDate(raw.Date.Start), End: shortDate(raw.Date.End)}
	case models.PropertyURL:
		return models.URLValue{URL: raw.URL}
	case models.PropertyEmail:
		return models.EmailValue{Email: raw.Email}
	case models.PropertyPeople:
		people := make([]models.Person, 0, len(raw.People))
		for _, u := range raw.People {
			p := models.Person{Name: u.Name}
			if u.Person != nil {
				p.Email = u.Person.Email
			}
			people = append(people, p)
		}
		return models.PeopleValue{People: people}
	}
	return models.UnsupportedValue{Kind: raw.Type}
}

// shortDate drops the time part of midnight UTC timestamps, which is how the
// SDK encodes date-only values.
func shortDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && strings.HasSuffix(s, "Z") {
		return t.Format(time.DateOnly)
	}
	return s
}

func convertBlock(b notionapi.Block) (*models.Block, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	var head rawBlock
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	block := &models.Block{
		ID:          head.ID,
		Type:        models.BlockType(head.Type),
		HasChildren: head.HasChildren,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	payload, ok := fields[head.Type]
	if !ok || string(payload) == "null" {
		return block, nil
	}

	var p rawBlockPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		// Payloads that are not objects (or differ in shape) carry nothing
		// the renderer needs.
		return block, nil
	}
	block.RichText = p.RichText
	block.Caption = p.Caption
	block.Checked = p.Checked
	block.Language = p.Language
	block.Expression = p.Expression
	if p.Icon != nil {
		block.Icon = p.Icon.Emoji
	}
	return block, nil
}
