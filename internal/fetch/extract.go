package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose text forms one line each.
// Line structure matters downstream: boundary detection anchors on
// line starts, so block elements must not run together.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, td, th, pre"

// ExtractText reduces an HTML document to plain text, one line per
// block element. Non-HTML input passes through unchanged.
func ExtractText(body string) (string, error) {
	if !looksLikeHTML(body) {
		return strings.TrimSpace(body), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, header, footer, form").Remove()

	var lines []string
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		// Nested blocks (a p inside a td) would duplicate text.
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		line := collapseSpace(sel.Text())
		if line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return collapseSpace(doc.Find("body").Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func looksLikeHTML(body string) bool {
	head := strings.ToLower(body)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<!doctype") ||
		strings.Contains(head, "<body")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
