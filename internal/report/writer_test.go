package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/webresearch/internal/model"
)

// testReport builds a fully populated report with a fixed timestamp so
// rendering assertions are deterministic.
func testReport() *model.Report {
	pageA := &model.PageRecord{
		URL:      "http://docs.test/ml",
		Title:    "Machine Learning Guide",
		BodyText: "Machine learning is the study of statistical models. Training uses data.",
	}
	pageB := &model.PageRecord{
		URL:      "http://docs.test/go",
		Title:    "Go Handbook",
		BodyText: "Go is a compiled language with a strong standard library.",
	}

	crawl := model.NewCrawlResult()
	crawl.TotalSeeds = 1
	crawl.AddPage(pageA)
	crawl.AddPage(pageB)
	crawl.PagesSkipped = 1
	crawl.AddError("http://bad.test", "timeout")

	filtered := model.FilteredSet{
		{Page: pageA, Keyword: "machine learning", Score: 0.85},
		{Page: pageB, Keyword: "golang", Score: 0.42},
	}
	groups := []model.Group{
		{
			Keyword:     "machine learning",
			Description: "statistical models",
			Members:     filtered[:1],
			Summary:     "- Machine learning is the study of statistical models.",
		},
		{
			Keyword:        "golang",
			Members:        filtered[1:],
			Summary:        "- Go is a compiled language with a strong standard library.",
			Degraded:       true,
			DegradedReason: "quota exceeded",
		},
	}

	return Assemble(AssembleInput{
		RunID:       "run-123",
		GeneratedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Keywords: []model.KeywordSpec{
			{Term: "machine learning", Description: "statistical models"},
			{Term: "golang"},
			{Term: "unmatched", Description: "never found"},
		},
		Crawl:           crawl,
		Filtered:        filtered,
		Groups:          groups,
		ScoreStrategy:   "lexical",
		SummaryStrategy: "generative",
		Duration:        1500 * time.Millisecond,
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders the full document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(testReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected bytes written")
		}

		out := buf.String()
		for _, want := range []string{
			"# Web Research Report",
			"`run-123`",
			"2026-08-24 12:00:00 UTC",
			"## Overview",
			"## Keywords",
			"**machine learning**",
			"## Results",
			"### 1. Machine Learning",
			"### 2. Golang",
			"> statistical models",
			"85.0%",
			"http://docs.test/ml",
			"## Appendix: Page Excerpts",
			"*Report generated by [webresearch](https://github.com/nao1215/webresearch)*",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("degraded group carries a warning", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "quota exceeded") {
			t.Error("expected the degradation reason in the output")
		}
		if !strings.Contains(buf.String(), "extractive fallback") {
			t.Error("expected a fallback notice in the output")
		}
	})

	t.Run("renders byte identically across calls", func(t *testing.T) {
		t.Parallel()

		report := testReport()

		var first, second bytes.Buffer
		if _, err := NewMarkdownWriter(&first).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewMarkdownWriter(&second).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !bytes.Equal(first.Bytes(), second.Bytes()) {
			t.Error("expected byte-identical renders for identical input")
		}
	})

	t.Run("empty report renders without groups", func(t *testing.T) {
		t.Parallel()

		report := Assemble(AssembleInput{
			RunID:       "run-empty",
			GeneratedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
			Keywords:    []model.KeywordSpec{{Term: "x", Description: "x desc"}},
			Crawl:       model.NewCrawlResult(),
		})

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "No keyword groups were produced.") {
			t.Error("expected the empty-results notice")
		}
		if !strings.Contains(out, "No pages were crawled") {
			t.Error("expected the empty-crawl caution")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round trips the report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Report
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("unexpected unmarshal error: %v", err)
		}

		if got.RunID != "run-123" {
			t.Errorf("expected run-123, got %s", got.RunID)
		}
		if len(got.Groups) != 2 {
			t.Errorf("expected 2 groups, got %d", len(got.Groups))
		}
		if got.Stats.PagesVisited != 2 {
			t.Errorf("expected 2 pages visited, got %d", got.Stats.PagesVisited)
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.Count(buf.String(), "\n"); got != 1 {
			t.Errorf("expected exactly the trailing newline, got %d newlines", got)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"run_id\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("unexpected unmarshal error: %v", err)
		}
		if got.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %s", got.Version)
		}
		if got.Report == nil || got.Report.RunID != "run-123" {
			t.Error("expected the wrapped report")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders terminal sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"WEB RESEARCH REPORT",
			"Run ID:     run-123",
			"OVERVIEW",
			"Pages visited:    2",
			"Groups:           2 (1 degraded)",
			"KEYWORDS",
			"[1] machine learning (1 matches)",
			"[3] unmatched (0 matches)",
			"RESULTS",
			"(85.0%)",
			"Report generated by webresearch",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("verbose adds page excerpts", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "PAGE EXCERPTS") {
			t.Error("expected no excerpt section by default")
		}
		if !strings.Contains(verbose.String(), "PAGE EXCERPTS") {
			t.Error("expected the excerpt section in verbose mode")
		}
	})
}

// failingOutput always fails, for error propagation tests.
type failingOutput struct{}

func (failingOutput) Write([]byte) (int, error) {
	return 0, errors.New("sink failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var first, second bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&first), NewSimpleWriter(&second))
		if _, err := mw.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if first.Len() == 0 || second.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var untouched bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(failingOutput{}), NewJSONWriter(&untouched))
		if _, err := mw.Write(testReport()); err == nil {
			t.Error("expected error from the failing writer")
		}

		if untouched.Len() != 0 {
			t.Error("expected later writers to be skipped after an error")
		}
	})
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short text unchanged", input: "short", limit: 10, want: "short"},
		{name: "exact limit unchanged", input: "12345", limit: 5, want: "12345"},
		{name: "long text truncated", input: "1234567890", limit: 5, want: "12345..."},
		{name: "multibyte safe", input: "ありがとうございます", limit: 3, want: "ありが..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := excerpt(tt.input, tt.limit); got != tt.want {
				t.Errorf("excerpt(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}
