package extract

import (
	"reflect"
	"testing"
)

func TestCleanLines(t *testing.T) {
	in := []string{
		"Here are the factual claims:",
		"1. Tom Hanks acted in <b>Big</b>.",
		"* **Inception was directed by Nolan.**",
		"2) Tom Hanks acted in Big.",
		"",
		"   ",
		"Claims: none",
		"— Kate Winslet acted in Titanic",
	}
	want := []string{
		"Tom Hanks acted in Big.",
		"Inception was directed by Nolan.",
		"Kate Winslet acted in Titanic",
	}

	if got := CleanLines(in); !reflect.DeepEqual(got, want) {
		t.Errorf("CleanLines() = %q, want %q", got, want)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<script>alert(1)</script>Titanic", "Titanic"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"Conan O'Brien", "Conan O'Brien"},
		{"  Avatar \n\t (2009) ", "Avatar (2009)"},
		{`<a href="https://example.com">Heat</a> was directed by Michael Mann`, "Heat was directed by Michael Mann"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
