// Package segment turns raw extracted document text into atomic, citable
// provisions. Heading conventions vary per document, so the segmenter runs
// several general boundary heuristics and keeps whichever yields the most
// plausible granularity for that specific document.
package segment

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContentLength bounds provision size for the index and any
	// downstream LLM context. Longer spans are truncated, not summarized.
	MaxContentLength = 3000

	// MinContentLength is the post-filter floor; shorter candidates are
	// extraction noise, not provisions.
	MinContentLength = 50

	// minSegmentLength filters split artifacts before section recovery.
	minSegmentLength = 30

	// maxSegments rejects patterns that over-segment on accidental
	// punctuation.
	maxSegments = 200

	// chunkThreshold is the document length above which an unsplittable
	// document falls back to fixed-size chunking.
	chunkThreshold = 2000

	// chunkWindow and chunkOverlap control the fallback chunker. The
	// overlap keeps legal ideas spanning a boundary visible on both sides.
	chunkWindow  = 1500
	chunkOverlap = 200

	// maxTitleLineLength: longer first lines are body text, not headings.
	maxTitleLineLength = 120
)

// boundaryRule is one boundary-detection heuristic. Rules are evaluated in
// priority order with an explicit segment-count score, so the selection is
// auditable and testable per rule.
type boundaryRule struct {
	name    string
	pattern *regexp.Regexp
}

// boundaryRules are representative of how municipal legal documents mark
// provisions. Splits are zero-width: the boundary stays with the segment
// that follows it.
var boundaryRules = []boundaryRule{
	// Explicit section markers: "§ 591-2.1", "§591-2.1"
	{name: "section_marker", pattern: regexp.MustCompile(`§\s*[\d]+[\d.\-]*`)},
	// Enumerated article headers: "ARTICLE I", "ARTICLE IV"
	{name: "article_header", pattern: regexp.MustCompile(`(?m)^ARTICLE\s+[IVXLC]+`)},
	// Deep dotted numeric paths at line start: "4.2.1 Setbacks"
	{name: "dotted_path", pattern: regexp.MustCompile(`(?m)^\d+\.\d+\.\d+`)},
	// Parenthesized top-level enumeration at line start: "(1) ..."
	{name: "paren_enum", pattern: regexp.MustCompile(`(?m)^\(\d+\)`)},
}

// sectionIDRegex recovers a section identifier from the start of a segment.
var sectionIDRegex = regexp.MustCompile(`^§?\s*([\d]+[\d.\-]*[\dA-Za-z])`)

// Segment is one provision candidate produced by the segmenter.
type Segment struct {
	// Section is the recovered or synthesized section locator. Never empty.
	Section string
	// SectionTitle is the best-effort heading, empty when unrecoverable.
	SectionTitle string
	// Content is the trimmed, length-capped provision body.
	Content string
}

// Segmenter splits chapter text into provision candidates.
type Segmenter struct {
	rules []boundaryRule
}

// New returns a Segmenter with the default boundary rules.
func New() *Segmenter {
	return &Segmenter{rules: boundaryRules}
}

// Split segments a chapter's raw extracted text. The chapter identifier is
// used to synthesize locators for segments with no recoverable section.
// Unparsable (near-empty) text yields zero segments; callers log and move on.
func (s *Segmenter) Split(chapter, text string) []Segment {
	text = strings.TrimSpace(text)
	if len(text) < MinContentLength {
		slog.Warn("segment_unparsable_text",
			slog.String("chapter", chapter),
			slog.Int("length", len(text)))
		return nil
	}

	parts := s.bestSplit(text)

	// A single oversized segment means no heuristic found real
	// boundaries; chunk it so long chapters stay retrievable.
	if len(parts) == 1 && len(text) > chunkThreshold {
		parts = chunkWithOverlap(text, chunkWindow, chunkOverlap)
	}

	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		seg, ok := buildSegment(chapter, part, len(segments)+1)
		if ok {
			segments = append(segments, seg)
		}
	}
	return segments
}

// bestSplit runs every boundary rule and keeps the split whose segment
// count strictly improves on the best so far while staying below the
// over-segmentation bound. The whole document is the baseline.
func (s *Segmenter) bestSplit(text string) []string {
	best := []string{text}
	for _, rule := range s.rules {
		candidate := splitBefore(text, rule.pattern)
		candidate = dropShort(candidate, minSegmentLength)
		if len(candidate) > len(best) && len(candidate) < maxSegments {
			slog.Debug("segment_rule_selected",
				slog.String("rule", rule.name),
				slog.Int("segments", len(candidate)))
			best = candidate
		}
	}
	return best
}

// splitBefore splits text at each pattern match without consuming the
// match: boundaries are kept with the following segment.
func splitBefore(text string, pattern *regexp.Regexp) []string {
	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, text[prev:])
	return parts
}

func dropShort(parts []string, min int) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(strings.TrimSpace(p)) >= min {
			out = append(out, p)
		}
	}
	return out
}

// chunkWithOverlap is the fixed-size fallback for documents no rule could
// split. Each window overlaps the previous so ideas spanning a boundary
// are not lost entirely to one side.
func chunkWithOverlap(text string, window, overlap int) []string {
	var parts []string
	step := window - overlap
	for start := 0; start < len(text); start += step {
		end := start + window
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[start:end])
		if end == len(text) {
			break
		}
	}
	return parts
}

// buildSegment recovers a section identifier and title from a raw part and
// applies the content length bounds. Position is the segment's 1-based
// index within the chapter, used for synthesized locators.
func buildSegment(chapter, part string, position int) (Segment, bool) {
	content := strings.TrimSpace(part)
	if len(content) > MaxContentLength {
		// Cut on a rune boundary; legal text is full of multi-byte
		// characters like the section sign.
		cut := MaxContentLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = strings.TrimSpace(content[:cut])
	}

	m := sectionIDRegex.FindStringSubmatch(content)

	// A recovered section marker is strong evidence of a real provision,
	// so the noise floor relaxes to the split floor for marked segments.
	// Terse provisions like "§ 591-2.1 No person shall ..." stay citable.
	floor := MinContentLength
	if m != nil {
		floor = minSegmentLength
	}
	if len(content) < floor {
		return Segment{}, false
	}

	seg := Segment{Content: content}

	if m != nil {
		seg.Section = m[1]
	} else {
		// Synthesized reference: unique and stable even without a
		// legal section number.
		seg.Section = fmt.Sprintf("%s (Part %d)", chapter, position)
	}

	if line, _, found := strings.Cut(content, "\n"); found {
		line = strings.TrimSpace(line)
		if len(line) > 0 && len(line) < maxTitleLineLength {
			seg.SectionTitle = line
		}
	}

	return seg, true
}
