package security

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScripts(t *testing.T) {
	s := NewSanitizer()

	got := s.Sanitize(`<p>Match report</p><script>alert("xss")</script>`)
	if strings.Contains(got, "<script") || strings.Contains(got, "alert") {
		t.Fatalf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<p>Match report</p>") {
		t.Fatalf("paragraph was lost: %q", got)
	}
}

func TestSanitizeKeepsAllowedMarkup(t *testing.T) {
	s := NewSanitizer()

	in := `<h2>Season review</h2><ul><li><strong>Won</strong> 12</li></ul><blockquote>Great year</blockquote>`
	if got := s.Sanitize(in); got != in {
		t.Fatalf("allowed markup changed:\n in: %q\nout: %q", in, got)
	}
}

func TestSanitizeStripsEventAttributes(t *testing.T) {
	s := NewSanitizer()

	got := s.Sanitize(`<p onclick="steal()">hi</p><img src="https://club.lv/a.jpg" onerror="steal()">`)
	if strings.Contains(got, "onclick") || strings.Contains(got, "onerror") {
		t.Fatalf("event attribute survived: %q", got)
	}
	if !strings.Contains(got, `src="https://club.lv/a.jpg"`) {
		t.Fatalf("image source was lost: %q", got)
	}
}

func TestSanitizeDeterministic(t *testing.T) {
	s := NewSanitizer()

	in := `<p>Fixture <em>update</em></p><a href="https://rugby.example/fixtures">list</a>`
	first := s.Sanitize(in)
	for i := 0; i < 3; i++ {
		if got := s.Sanitize(in); got != first {
			t.Fatalf("sanitize not deterministic: %q vs %q", got, first)
		}
	}
}
