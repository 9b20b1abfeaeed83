package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markupHints = []string{"</", "<p", "<br", "<a ", "<em", "<i>", "<b>", "&amp;", "&lt;", "&gt;"}

// PlainText returns s with HTML markup removed and whitespace collapsed.
// Abstracts usually arrive as plain text with hard line breaks; listing
// feeds occasionally wrap them in HTML.
func PlainText(s string) string {
	if looksLikeHTML(s) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}
	return normalizeSpace(s)
}

func looksLikeHTML(s string) bool {
	for _, hint := range markupHints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
