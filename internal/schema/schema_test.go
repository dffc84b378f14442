package schema

import (
	"errors"
	"testing"

	"github.com/takak2166/notion2csv/internal/models"
)

func catalogSchema() models.Schema {
	return models.Schema{
		Properties: []models.SchemaProperty{
			{Name: "Címkék", Type: models.PropertyMultiSelect},
			{Name: "Kurzus", Type: models.PropertySelect},
			{Name: "Név", Type: models.PropertyTitle},
			{Name: "Pontszám", Type: models.PropertyNumber},
			{Name: "Sorszám:", Type: models.PropertyNumber},
			{Name: "Szakasz", Type: models.PropertySelect},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		schema   models.Schema
		grouping string
		want     Roles
		wantErr  error
	}{
		{
			name:     "Synonym matches win over type fallbacks",
			schema:   catalogSchema(),
			grouping: "Kurzus",
			want: Roles{
				Grouping: models.SchemaProperty{Name: "Kurzus", Type: models.PropertySelect},
				Title:    "Név",
				Section:  "Szakasz",
				Order:    "Sorszám:",
			},
		},
		{
			name:     "Grouping matched by normalized name",
			schema:   catalogSchema(),
			grouping: " kurzus ",
			want: Roles{
				Grouping: models.SchemaProperty{Name: "Kurzus", Type: models.PropertySelect},
				Title:    "Név",
				Section:  "Szakasz",
				Order:    "Sorszám:",
			},
		},
		{
			name: "Type fallbacks",
			schema: models.Schema{
				Properties: []models.SchemaProperty{
					{Name: "Course", Type: models.PropertyStatus},
					{Name: "Name", Type: models.PropertyTitle},
					{Name: "Stage", Type: models.PropertySelect},
					{Name: "Weight", Type: models.PropertyNumber},
				},
			},
			grouping: "Course",
			want: Roles{
				Grouping: models.SchemaProperty{Name: "Course", Type: models.PropertyStatus},
				Title:    "Name",
				Section:  "Stage",
				Order:    "Weight",
			},
		},
		{
			name: "No section or order property",
			schema: models.Schema{
				Properties: []models.SchemaProperty{
					{Name: "Kurzus", Type: models.PropertyMultiSelect},
					{Name: "Name", Type: models.PropertyTitle},
				},
			},
			grouping: "Kurzus",
			want: Roles{
				Grouping: models.SchemaProperty{Name: "Kurzus", Type: models.PropertyMultiSelect},
				Title:    "Name",
			},
		},
		{
			name:     "Missing grouping property",
			schema:   catalogSchema(),
			grouping: "Tanfolyam",
			wantErr:  ErrGroupingPropertyNotFound,
		},
		{
			name:     "Grouping property of the wrong type",
			schema:   catalogSchema(),
			grouping: "Pontszám",
			wantErr:  ErrUnsupportedGroupingType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.schema, tt.grouping)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got.Grouping.Name != tt.want.Grouping.Name || got.Grouping.Type != tt.want.Grouping.Type {
				t.Errorf("Grouping = %+v, want %+v", got.Grouping, tt.want.Grouping)
			}
			if got.Title != tt.want.Title || got.Section != tt.want.Section || got.Order != tt.want.Order {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
