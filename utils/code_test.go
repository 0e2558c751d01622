package utils

import (
	"strings"
	"testing"
)

func TestGenerateTaskCodeUsesProjectPrefix(t *testing.T) {
	code := GenerateTaskCode("ht")
	if !strings.HasPrefix(code, "HT-") {
		t.Fatalf("expected HT- prefix, got %s", code)
	}
	if code := GenerateTaskCode(""); !strings.HasPrefix(code, "TSK-") {
		t.Fatalf("expected TSK- fallback, got %s", code)
	}
}

func TestGenerateProjectCodeInitials(t *testing.T) {
	code := GenerateProjectCode("Harbor Tower Extension")
	if !strings.HasPrefix(code, "HTE") {
		t.Fatalf("expected HTE prefix, got %s", code)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %s", code)
	}
	if code := GenerateProjectCode("123 456"); !strings.HasPrefix(code, "PRJ") {
		t.Fatalf("expected PRJ fallback, got %s", code)
	}
}
