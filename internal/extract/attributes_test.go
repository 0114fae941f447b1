package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

type stubAttributeExtractor struct {
	claims []model.AttributeClaim
	err    error
}

func (s *stubAttributeExtractor) Name() string { return "stub" }

func (s *stubAttributeExtractor) ExtractAttributes(ctx context.Context, text string) ([]model.AttributeClaim, error) {
	return s.claims, s.err
}

func ac(attr model.Attribute, value string) model.AttributeClaim {
	return model.AttributeClaim{Attribute: attr, Value: value}
}

func TestExtractAttributes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.AttributeClaim
	}{
		{
			name: "sentence patterns",
			text: "Titanic (1997) was directed by James Cameron, starring Leonardo DiCaprio and Kate Winslet, and grossed over $2.1 billion worldwide. It runs 194 minutes.",
			want: []model.AttributeClaim{
				ac(model.AttrTitle, "Titanic"),
				ac(model.AttrDirector, "James Cameron"),
				ac(model.AttrActor, "Leonardo DiCaprio"),
				ac(model.AttrActor, "Kate Winslet"),
				ac(model.AttrReleaseYear, "1997"),
				ac(model.AttrBoxOffice, "$2.1 billion"),
				ac(model.AttrRuntime, "194 minutes"),
			},
		},
		{
			name: "quoted title and release phrase",
			text: `The movie "Avatar" came out in 2009 and earned about 2.9 billion dollars.`,
			want: []model.AttributeClaim{
				ac(model.AttrTitle, "Avatar"),
				ac(model.AttrReleaseYear, "2009"),
				ac(model.AttrBoxOffice, "2.9 billion dollars"),
			},
		},
		{
			name: "attribute lines win over patterns",
			text: "Title: Titanic\nRelease Year: 1997\nrating: 8",
			want: []model.AttributeClaim{
				ac(model.AttrTitle, "Titanic"),
				ac(model.AttrReleaseYear, "1997"),
			},
		},
		{
			name: "initials in names",
			text: "Star Trek was directed by J. J. Abrams.",
			want: []model.AttributeClaim{
				ac(model.AttrTitle, "Star Trek"),
				ac(model.AttrDirector, "J. J. Abrams"),
			},
		},
		{
			name: "nothing to find",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAttributes(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractAttributes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAttributeChain(t *testing.T) {
	text := "Heat was directed by Michael Mann."

	got := NewAttributeChain(nil).Extract(context.Background(), text)
	if got.Extractor != "patterns" || len(got.Claims) != 2 {
		t.Errorf("patterns only: %+v", got)
	}

	primary := &stubAttributeExtractor{claims: []model.AttributeClaim{ac(model.AttrGenre, "crime")}}
	got = NewAttributeChain(primary).Extract(context.Background(), text)
	if got.Extractor != "stub" || len(got.Claims) != 1 || got.Claims[0].Attribute != model.AttrGenre {
		t.Errorf("primary result should be used: %+v", got)
	}

	for _, p := range []*stubAttributeExtractor{{err: errors.New("timeout")}, {}} {
		got = NewAttributeChain(p).Extract(context.Background(), text)
		if got.Extractor != "patterns" || len(got.Warnings) != 1 || len(got.Claims) != 2 {
			t.Errorf("expected pattern fallback with a warning: %+v", got)
		}
	}

	if got = NewAttributeChain(primary).Extract(context.Background(), ""); len(got.Claims) != 0 {
		t.Errorf("empty text: %+v", got)
	}
}
