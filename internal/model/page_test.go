package model

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestPageRecordComputeHash tests the ComputeHash method.
func TestPageRecordComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA256 hash of body text", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: "Hello, World!"}
		page.ComputeHash()

		// Expected SHA256 of "Hello, World!"
		expected := "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
		if page.Hash != expected {
			t.Errorf("got %q, expected %q", page.Hash, expected)
		}
	})

	t.Run("empty body produces empty hash", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: ""}
		page.ComputeHash()

		if page.Hash != "" {
			t.Errorf("expected empty hash, got %q", page.Hash)
		}
	})

	t.Run("same body produces same hash", func(t *testing.T) {
		t.Parallel()

		a := &PageRecord{BodyText: "identical text"}
		b := &PageRecord{BodyText: "identical text"}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash != b.Hash {
			t.Errorf("expected identical hashes, got %q and %q", a.Hash, b.Hash)
		}
	})
}

// TestPageRecordTruncateBodyText tests body text truncation.
func TestPageRecordTruncateBodyText(t *testing.T) {
	t.Parallel()

	t.Run("short body is untouched", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: "short text"}
		page.TruncateBodyText()

		if page.BodyText != "short text" {
			t.Errorf("expected body to be untouched, got %q", page.BodyText)
		}
	})

	t.Run("body at cap is untouched", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: strings.Repeat("a", MaxBodyTextRunes)}
		page.TruncateBodyText()

		if len(page.BodyText) != MaxBodyTextRunes {
			t.Errorf("expected %d runes, got %d", MaxBodyTextRunes, len(page.BodyText))
		}
	})

	t.Run("long body is cut to the cap", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: strings.Repeat("a", MaxBodyTextRunes+100)}
		page.TruncateBodyText()

		if utf8.RuneCountInString(page.BodyText) != MaxBodyTextRunes {
			t.Errorf("expected %d runes, got %d", MaxBodyTextRunes, utf8.RuneCountInString(page.BodyText))
		}
	})

	t.Run("multi-byte text is never cut mid-character", func(t *testing.T) {
		t.Parallel()

		page := &PageRecord{BodyText: strings.Repeat("あ", MaxBodyTextRunes+10)}
		page.TruncateBodyText()

		if utf8.RuneCountInString(page.BodyText) != MaxBodyTextRunes {
			t.Errorf("expected %d runes, got %d", MaxBodyTextRunes, utf8.RuneCountInString(page.BodyText))
		}
		if !utf8.ValidString(page.BodyText) {
			t.Error("expected valid UTF-8 after truncation")
		}
	})
}

// TestCrawlResultAddPage tests discovery order assignment.
func TestCrawlResultAddPage(t *testing.T) {
	t.Parallel()

	t.Run("assigns dense order and counts visits", func(t *testing.T) {
		t.Parallel()

		result := NewCrawlResult()
		result.AddPage(&PageRecord{URL: "https://a.test/"})
		result.AddError("https://bad.test/", "timeout")
		result.AddPage(&PageRecord{URL: "https://b.test/"})

		if result.PagesVisited != 2 {
			t.Errorf("expected 2 pages visited, got %d", result.PagesVisited)
		}
		if result.Pages[0].Order != 0 || result.Pages[1].Order != 1 {
			t.Errorf("expected dense order 0,1, got %d,%d", result.Pages[0].Order, result.Pages[1].Order)
		}
	})

	t.Run("records fetch errors in order", func(t *testing.T) {
		t.Parallel()

		result := NewCrawlResult()
		result.AddError("https://a.test/", "http error: 403")
		result.AddError("https://b.test/", "timeout")

		if len(result.Errors) != 2 {
			t.Fatalf("expected 2 errors, got %d", len(result.Errors))
		}
		if result.Errors[0].URL != "https://a.test/" || result.Errors[0].Reason != "http error: 403" {
			t.Errorf("unexpected first error: %+v", result.Errors[0])
		}
		if result.Errors[1].Reason != "timeout" {
			t.Errorf("unexpected second error: %+v", result.Errors[1])
		}
	})
}
