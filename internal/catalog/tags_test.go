package catalog

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple", "ide,text", []string{"ide", "text"}},
		{"trims whitespace", " ide , text ", []string{"ide", "text"}},
		{"drops empty entries", "ide,,text,", []string{"ide", "text"}},
		{"empty string", "", []string{}},
		{"only separators", ", ,", []string{}},
		{"single tag", "productivity", []string{"productivity"}},
		{"preserves order", "c,a,b", []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
