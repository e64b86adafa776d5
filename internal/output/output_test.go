package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiqawos/toronto2.0/internal/ingest"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

func sampleProvisions() []*store.Provision {
	return []*store.Provision{
		{
			Source:       store.SourceMunicipalCode,
			Chapter:      "Chapter 591",
			ChapterTitle: "Noise",
			Section:      "591-2.1",
			Content:      "No person shall make unreasonable noise after 11pm in a residential area.",
			Keywords:     []string{"noise"},
			URL:          "https://example.com/code/591",
		},
	}
}

func TestProvisionsTextOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.Provisions(sampleProvisions())
	out := buf.String()

	assert.Contains(t, out, "1. Chapter 591-591-2.1")
	assert.Contains(t, out, "Noise")
	assert.Contains(t, out, "unreasonable noise after 11pm")
	assert.Contains(t, out, "tags: noise")
	assert.Contains(t, out, "https://example.com/code/591")
}

func TestProvisionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.Provisions(nil)
	assert.Contains(t, buf.String(), "No provisions matched")
}

func TestProvisionsJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	require.NoError(t, w.ProvisionsJSON(sampleProvisions()))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "Chapter 591-591-2.1", parsed[0]["reference"])
	assert.Equal(t, "municipal_code", parsed[0]["source"])
}

func TestSnippetTruncatesOnWordBoundary(t *testing.T) {
	long := strings.Repeat("noise regulation provisions apply ", 20)
	s := snippet(long)

	assert.LessOrEqual(t, len(s), snippetLength+len("…"))
	assert.True(t, strings.HasSuffix(s, "…"))
	assert.NotContains(t, s, "  ")
}

func TestStatsOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.Stats(&store.Stats{
		TotalProvisions:  42,
		IngestedChapters: 3,
		BySource:         []store.SourceStat{{Source: store.SourceMunicipalCode, Count: 40}},
		TopChapters:      []store.ChapterStat{{Chapter: "Chapter 591", ChapterTitle: "Noise", Count: 12}},
	})
	out := buf.String()

	assert.Contains(t, out, "42")
	assert.Contains(t, out, "municipal_code")
	assert.Contains(t, out, "Noise")
}

func TestRunResultOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewPlain(&buf)

	w.RunResult(&ingest.RunResult{
		Processed:  2,
		Skipped:    1,
		Provisions: 17,
		Failures: []ingest.UnitFailure{
			{Unit: "municipal_code/591", Err: assert.AnError},
		},
		Duration: 1500 * time.Millisecond,
	})
	out := buf.String()

	assert.Contains(t, out, "processed:  2")
	assert.Contains(t, out, "provisions: 17")
	assert.Contains(t, out, "municipal_code/591")
	assert.Contains(t, out, "1.5s")
}