package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sadiqawos/toronto2.0/internal/ingest"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

// snippetLength caps the content excerpt shown per result.
const snippetLength = 280

// Provisions renders ranked search results as readable text.
func (w *Writer) Provisions(provisions []*store.Provision) {
	if len(provisions) == 0 {
		w.Printf("No provisions matched.\n")
		return
	}

	for i, p := range provisions {
		w.Printf("%d. %s", i+1, w.styles.Reference.Render(p.Reference()))
		if p.SectionTitle != "" {
			w.Printf("  %s", p.SectionTitle)
		} else if p.ChapterTitle != "" {
			w.Printf("  %s", p.ChapterTitle)
		}
		w.Printf("  %s\n", w.styles.Dim.Render(string(p.Source)))

		if p.Summary != "" {
			w.Printf("   %s\n", p.Summary)
		}
		w.Printf("   %s\n", snippet(p.Content))
		if len(p.Keywords) > 0 {
			w.Printf("   %s\n", w.styles.Dim.Render("tags: "+strings.Join(p.Keywords, ", ")))
		}
		if p.URL != "" {
			w.Printf("   %s\n", w.styles.Dim.Render(p.URL))
		}
		w.Newline()
	}
}

// provisionJSON is the stable JSON shape for search results.
type provisionJSON struct {
	Reference    string   `json:"reference"`
	Source       string   `json:"source"`
	ChapterTitle string   `json:"chapter_title,omitempty"`
	SectionTitle string   `json:"section_title,omitempty"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// ProvisionsJSON renders results as a JSON array.
func (w *Writer) ProvisionsJSON(provisions []*store.Provision) error {
	out := make([]provisionJSON, len(provisions))
	for i, p := range provisions {
		out[i] = provisionJSON{
			Reference:    p.Reference(),
			Source:       string(p.Source),
			ChapterTitle: p.ChapterTitle,
			SectionTitle: p.SectionTitle,
			Content:      p.Content,
			Summary:      p.Summary,
			Keywords:     p.Keywords,
			URL:          p.URL,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	w.Printf("%s\n", data)
	return nil
}

// Stats renders aggregate store counts.
func (w *Writer) Stats(stats *store.Stats) {
	w.Header("Provision store")
	w.Printf("  provisions:        %d\n", stats.TotalProvisions)
	w.Printf("  ingested chapters: %d\n", stats.IngestedChapters)

	if len(stats.BySource) > 0 {
		w.Newline()
		w.Header("By source")
		for _, s := range stats.BySource {
			w.Printf("  %-18s %d\n", s.Source, s.Count)
		}
	}
	if len(stats.TopChapters) > 0 {
		w.Newline()
		w.Header("Top chapters")
		for _, c := range stats.TopChapters {
			title := c.ChapterTitle
			if title == "" {
				title = c.Chapter
			}
			w.Printf("  %-30s %d\n", title, c.Count)
		}
	}
}

// RunResult renders an ingestion run summary.
func (w *Writer) RunResult(result *ingest.RunResult) {
	w.Success("ingestion complete in %s", result.Duration.Round(time.Millisecond))
	w.Printf("  processed:  %d chapters\n", result.Processed)
	w.Printf("  skipped:    %d (already ingested)\n", result.Skipped)
	if result.Empty > 0 {
		w.Printf("  empty:      %d (no provisions extracted)\n", result.Empty)
	}
	w.Printf("  provisions: %d\n", result.Provisions)

	if len(result.Failures) > 0 {
		w.Newline()
		w.Warning("%d chapter(s) failed and stay eligible for retry:", len(result.Failures))
		for _, f := range result.Failures {
			w.Printf("  %s: %v\n", f.Unit, f.Err)
		}
	}
}

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= snippetLength {
		return content
	}
	cut := strings.LastIndex(content[:snippetLength], " ")
	if cut <= 0 {
		cut = snippetLength
	}
	return fmt.Sprintf("%s…", content[:cut])
}
