package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := New(EConfig, "TMDb credentials missing")
	if got := err.Error(); got != "E_CONFIG: TMDb credentials missing" {
		t.Errorf("unexpected message: %q", got)
	}

	cause := errors.New("dial tcp: timeout")
	wrapped := Wrap(EProviderUnavailable, "tmdb", cause)
	if got := wrapped.Error(); got != "E_PROVIDER_UNAVAILABLE: tmdb: dial tcp: timeout" {
		t.Errorf("unexpected message: %q", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped error to unwrap to cause")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"direct", New(EAmbiguousClaim, "none"), EAmbiguousClaim},
		{"wrapped by fmt", fmt.Errorf("lookup: %w", Newf(EProviderAuth, "status %d", 401)), EProviderAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(fmt.Errorf("omdb: %w", New(EProviderUnavailable, "503"))) {
		t.Error("expected provider unavailable to be transient")
	}
	if IsTransient(New(EConfig, "missing key")) {
		t.Error("config errors are not transient")
	}
	if !IsConfig(New(EConfig, "missing key")) {
		t.Error("expected IsConfig to detect E_CONFIG")
	}
}
