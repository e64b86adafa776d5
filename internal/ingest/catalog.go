// Package ingest drives the write path: it walks a catalog of sources
// and chapters, fetches each chapter's text, segments it into
// provisions, tags keywords, and commits the batch to the store. Every
// (source, chapter) unit is idempotent and failures are contained to
// the unit that raised them.
package ingest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadiqawos/toronto2.0/internal/errors"
	"github.com/sadiqawos/toronto2.0/internal/store"
)

// Chapter is one ingestible document within a source.
type Chapter struct {
	// Number is the chapter identifier, e.g. "591".
	Number string `yaml:"number"`
	// Title is the chapter heading, e.g. "Noise".
	Title string `yaml:"title"`
	// URL overrides the source url_template for this chapter.
	URL string `yaml:"url,omitempty"`
}

// SourceCatalog describes the chapters of one source.
type SourceCatalog struct {
	// Title is the display name, e.g. "Toronto Municipal Code".
	Title string `yaml:"title"`
	// URLTemplate builds chapter URLs; "{chapter}" is replaced by the
	// chapter number. Ignored for chapters that carry their own URL.
	URLTemplate string `yaml:"url_template,omitempty"`
	// Chapters lists every known chapter in catalog order.
	Chapters []Chapter `yaml:"chapters"`
	// PriorityChapters names the default ingestion subset. Empty means
	// all chapters are ingested by default.
	PriorityChapters []string `yaml:"priority_chapters,omitempty"`
}

// Catalog is the static description of every known source.
type Catalog struct {
	Sources map[string]SourceCatalog `yaml:"sources"`
}

// Unit is one (source, chapter) ingestion unit with its resolved URL.
type Unit struct {
	Source  store.Source
	Chapter Chapter
	URL     string
}

// ID returns the unit's log identifier.
func (u Unit) ID() string {
	return fmt.Sprintf("%s/%s", u.Source, u.Chapter.Number)
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("catalog not found at %s", path), err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog yaml.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.New(errors.ErrCodeCatalogInvalid, "catalog yaml is malformed", err)
	}
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogInvalid, "catalog declares no sources", nil)
	}
	for name, sc := range c.Sources {
		if len(sc.Chapters) == 0 {
			return nil, errors.New(errors.ErrCodeCatalogInvalid,
				fmt.Sprintf("source %q declares no chapters", name), nil)
		}
		seen := make(map[string]bool, len(sc.Chapters))
		for _, ch := range sc.Chapters {
			if ch.Number == "" {
				return nil, errors.New(errors.ErrCodeCatalogInvalid,
					fmt.Sprintf("source %q has a chapter without a number", name), nil)
			}
			if seen[ch.Number] {
				return nil, errors.New(errors.ErrCodeCatalogInvalid,
					fmt.Sprintf("source %q lists chapter %s twice", name, ch.Number), nil)
			}
			seen[ch.Number] = true
			if ch.URL == "" && sc.URLTemplate == "" {
				return nil, errors.New(errors.ErrCodeCatalogInvalid,
					fmt.Sprintf("source %q chapter %s has no url and no url_template", name, ch.Number), nil)
			}
		}
		for _, num := range sc.PriorityChapters {
			if !seen[num] {
				return nil, errors.New(errors.ErrCodeCatalogInvalid,
					fmt.Sprintf("source %q priority chapter %s is not in its chapter list", name, num), nil)
			}
		}
	}
	return &c, nil
}

// SourceNames returns the catalog's sources in stable order.
func (c *Catalog) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Units resolves the ingestion units for one source, or for every
// source when name is empty. allChapters widens past the priority
// subset.
func (c *Catalog) Units(name string, allChapters bool) ([]Unit, error) {
	names := c.SourceNames()
	if name != "" {
		if _, ok := c.Sources[name]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("unknown source %q (known: %s)", name, strings.Join(names, ", ")), nil)
		}
		names = []string{name}
	}

	var units []Unit
	for _, n := range names {
		sc := c.Sources[n]
		priority := make(map[string]bool, len(sc.PriorityChapters))
		for _, num := range sc.PriorityChapters {
			priority[num] = true
		}
		for _, ch := range sc.Chapters {
			if !allChapters && len(priority) > 0 && !priority[ch.Number] {
				continue
			}
			units = append(units, Unit{
				Source:  store.Source(n),
				Chapter: ch,
				URL:     resolveURL(sc.URLTemplate, ch),
			})
		}
	}
	return units, nil
}

func resolveURL(template string, ch Chapter) string {
	if ch.URL != "" {
		return ch.URL
	}
	return strings.ReplaceAll(template, "{chapter}", ch.Number)
}
