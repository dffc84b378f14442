package textnorm

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sorszám", "sorszam"},
		{"sorszam", "sorszam"},
		{"Sorszám:", "sorszam"},
		{"  Videó - Szöveg ", "videoszoveg"},
		{"Üzleti Modellek", "uzletimodellek"},
		{"Lesson Text", "lessontext"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	s := NewSet("Szakasz", "Modul", "chapter")
	if !s.Contains("szakász") {
		t.Error("Expected accented variant to match")
	}
	if !s.Contains("MODUL") {
		t.Error("Expected upper case variant to match")
	}
	if s.Contains("Kurzus") {
		t.Error("Did not expect unrelated name to match")
	}
	if !Equal("Kurzus ", "kurzus") {
		t.Error("Expected Equal to ignore case and spacing")
	}
}
