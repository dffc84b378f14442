package models

import (
	"reflect"
	"testing"
	"time"
)

func TestPropertyValueString(t *testing.T) {
	num := 2.5
	tests := []struct {
		name  string
		value PropertyValue
		want  string
	}{
		{"number", NumberValue{Number: &num}, "2.5"},
		{"empty number", NumberValue{}, ""},
		{"select", SelectValue{Option: &Option{ID: "a", Name: "SEO"}}, "SEO"},
		{"empty select", SelectValue{}, ""},
		{"multi select", MultiSelectValue{Options: []Option{{Name: "A"}, {Name: "B"}}}, "A, B"},
		{"status", StatusValue{Option: &Option{Name: "Kész"}}, "Kész"},
		{"title", TitleValue{Spans: []RichText{{PlainText: "Első "}, {PlainText: "lecke"}}}, "Első lecke"},
		{"date", DateValue{Start: "2024-01-01"}, "2024-01-01"},
		{"date range", DateValue{Start: "2024-01-01", End: "2024-01-31"}, "2024-01-01..2024-01-31"},
		{"people", PeopleValue{People: []Person{{Name: "Anna"}, {Email: "b@example.com"}, {}}}, "Anna, b@example.com"},
		{"unsupported", UnsupportedValue{Kind: "formula"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectedOptions(t *testing.T) {
	opt := Option{ID: "a", Name: "SEO"}
	tests := []struct {
		name  string
		value PropertyValue
		want  []Option
	}{
		{"select", SelectValue{Option: &opt}, []Option{opt}},
		{"status", StatusValue{Option: &opt}, []Option{opt}},
		{"multi select", MultiSelectValue{Options: []Option{opt, {ID: "b"}}}, []Option{opt, {ID: "b"}}},
		{"empty select", SelectValue{}, nil},
		{"not a choice", TitleValue{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectedOptions(tt.value); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectedOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunCheckpointProgress(t *testing.T) {
	cp := &RunCheckpoint{
		Groups:    []string{"a", "b", "c", "d"},
		Completed: []string{"a"},
		Failed:    map[string]string{"c": "boom"},
	}

	if got := cp.Pending(); !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Errorf("Pending() = %v, want [b d]", got)
	}
	if cp.AllCompleted() {
		t.Error("AllCompleted() = true with pending groups")
	}

	cp.RecordDuration(2 * time.Second)
	cp.RecordDuration(4 * time.Second)
	if got := cp.AverageDuration(); got != 3*time.Second {
		t.Errorf("AverageDuration() = %v, want 3s", got)
	}
	if got := cp.ETA(); got != 6*time.Second {
		t.Errorf("ETA() = %v, want 6s", got)
	}

	cp.Completed = append(cp.Completed, "b", "d")
	delete(cp.Failed, "c")
	cp.Completed = append(cp.Completed, "c")
	if !cp.AllCompleted() {
		t.Error("AllCompleted() = false after every group completed")
	}
	if got := cp.ETA(); got != 0 {
		t.Errorf("ETA() = %v, want 0", got)
	}
}

func TestRecordDurationWindow(t *testing.T) {
	cp := &RunCheckpoint{}
	for i := 1; i <= DurationWindow+5; i++ {
		cp.RecordDuration(time.Duration(i) * time.Millisecond)
	}
	if len(cp.DurationsMS) != DurationWindow {
		t.Fatalf("Expected %d durations, got %d", DurationWindow, len(cp.DurationsMS))
	}
	if cp.DurationsMS[0] != 6 {
		t.Errorf("Expected oldest kept duration 6ms, got %dms", cp.DurationsMS[0])
	}
}

func TestExportModeValid(t *testing.T) {
	for _, m := range []ExportMode{ModeArchive, ModeUnified, ModeWorkbook} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if ExportMode("pdf").Valid() {
		t.Error("pdf should not be valid")
	}
}

func TestOptionName(t *testing.T) {
	s := Schema{Properties: []SchemaProperty{
		{Name: "Kurzus", Type: PropertySelect, Options: []Option{
			{ID: "o1", Name: "SEO"},
			{ID: "o2", Name: ""},
		}},
	}}

	tests := []struct {
		name     string
		property string
		id       string
		want     string
		wantOK   bool
	}{
		{"live option", "Kurzus", "o1", "SEO", true},
		{"option without a name", "Kurzus", "o2", "", false},
		{"unknown option", "Kurzus", "o3", "", false},
		{"unknown property", "Modul", "o1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.OptionName(tt.property, tt.id)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("OptionName(%q, %q) = %q, %v, want %q, %v", tt.property, tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
