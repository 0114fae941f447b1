package extract

import (
	"reflect"
	"testing"
)

func TestAutofill(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "pronoun takes the last person",
			in:   []string{"Leonardo DiCaprio starred in Titanic.", "He won an Oscar in 2016."},
			want: []string{"Leonardo DiCaprio starred in Titanic.", "Leonardo DiCaprio won an Oscar in 2016."},
		},
		{
			name: "award fragment for a film",
			in:   []string{"Leonardo DiCaprio acted in The Revenant.", "The Academy Award was given for The Revenant."},
			want: []string{"Leonardo DiCaprio acted in The Revenant.", "Leonardo DiCaprio won an Oscar for The Revenant."},
		},
		{
			name: "award fragment with a year",
			in:   []string{"Leonardo DiCaprio won an Oscar.", "The Oscar was awarded in 2016."},
			want: []string{"Leonardo DiCaprio won an Oscar.", "Leonardo DiCaprio won an Oscar in 2016."},
		},
		{
			name: "subjectless verb phrase",
			in:   []string{"Kate Winslet acted in Titanic.", "Won an Oscar for The Reader."},
			want: []string{"Kate Winslet acted in Titanic.", "Kate Winslet won an Oscar for The Reader."},
		},
		{
			name: "active voice director",
			in:   []string{"Christopher Nolan directed the film Inception."},
			want: []string{"Inception was directed by Christopher Nolan."},
		},
		{
			name: "active voice director with a year",
			in:   []string{"Nolan directed Inception in 2010"},
			want: []string{"Inception (2010) was directed by Nolan."},
		},
		{
			name: "film prefix dropped",
			in:   []string{"The film Heat was directed by Michael Mann."},
			want: []string{"Heat was directed by Michael Mann."},
		},
		{
			name: "no earlier person leaves fragments alone",
			in:   []string{"The Oscar was awarded in 2016.", "He won an Oscar."},
			want: []string{"The Oscar was awarded in 2016.", "He won an Oscar."},
		},
		{
			name: "clause before directed is not a name",
			in:   []string{"DiCaprio starred in Inception, which Nolan directed in 2010."},
			want: []string{"DiCaprio starred in Inception, which Nolan directed in 2010."},
		},
		{
			name: "film subject keeps its own claim",
			in:   []string{"Leonardo DiCaprio starred in Titanic.", "Titanic won 11 Oscars in 1998."},
			want: []string{"Leonardo DiCaprio starred in Titanic.", "Titanic won 11 Oscars in 1998."},
		},
		{
			name: "nomination is not turned into a win",
			in:   []string{"Leonardo DiCaprio starred in Titanic.", "Inception was nominated for an Oscar."},
			want: []string{"Leonardo DiCaprio starred in Titanic.", "Inception was nominated for an Oscar."},
		},
		{
			name: "pronoun nomination keeps the verb",
			in:   []string{"Bill Murray starred in Lost in Translation.", "He was nominated for an Oscar."},
			want: []string{"Bill Murray starred in Lost in Translation.", "Bill Murray was nominated for an Oscar."},
		},
		{
			name: "duplicates after rewriting",
			in:   []string{"Kate Winslet won an Oscar.", "She won an Oscar."},
			want: []string{"Kate Winslet won an Oscar."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Autofill(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Autofill() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersonOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inception was directed by Christopher Nolan.", "Christopher Nolan"},
		{"Tom Hanks acted in Big.", "Tom Hanks"},
		{"He won an Oscar.", ""},
		{"The Dark Knight is a film.", "Dark Knight"},
		{"no names here", ""},
	}

	for _, tt := range tests {
		if got := personOf(tt.in); got != tt.want {
			t.Errorf("personOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
