package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDocsConfig_RootRequired(t *testing.T) {
	cfg := DocsConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty root should fail validation")
	}
}

func TestDocsConfig_Cadence(t *testing.T) {
	cfg := DocsConfig{Root: "./docs", DefaultCadence: "90d"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid cadence rejected: %v", err)
	}
	d, err := cfg.Cadence()
	if err != nil {
		t.Fatal(err)
	}
	if d != 90*24*time.Hour {
		t.Errorf("cadence = %v", d)
	}

	cfg.DefaultCadence = "soonish"
	if err := cfg.Validate(); err == nil {
		t.Error("bogus cadence should fail validation")
	}

	cfg.DefaultCadence = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty cadence should be allowed: %v", err)
	}
}

func TestDocsConfig_Rules(t *testing.T) {
	cfg := DocsConfig{
		Root:             "./docs",
		Categories:       map[string]string{"rfcs": "design"},
		FallbackCategory: "misc",
	}
	rules := cfg.Rules()
	if rules.PathMap["rfcs"] != "design" {
		t.Errorf("path map = %v", rules.PathMap)
	}
	if rules.Fallback != "misc" {
		t.Errorf("fallback = %q", rules.Fallback)
	}

	// Without overrides the built-in rules apply.
	def := (&DocsConfig{Root: "./docs"}).Rules()
	if def.PathMap["active"] != "active" {
		t.Errorf("default path map = %v", def.PathMap)
	}
}

func TestNewDefaultConfig_Validates(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
