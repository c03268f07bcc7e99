package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("NOWAROUND_TEST_VALUE", "  console ")
	if got := Get("NOWAROUND_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	t.Setenv("NOWAROUND_TEST_VALUE", "   ")
	if got := Get("NOWAROUND_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
}
