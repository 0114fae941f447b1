package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Page sentences shorter or longer than this are navigation, captions or
// run-on blocks rather than statements.
const (
	minPageSentence = 15
	maxPageSentence = 500
)

// TextFromHTML returns the visible sentences of a page, one per line.
func TextFromHTML(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, s := range dedupe(splitSentences(extractVisibleText(doc), minPageSentence, maxPageSentence)) {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "svg", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// dedupe removes repeated sentences, ignoring case
func dedupe(sentences []string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, s := range sentences {
		key := strings.ToLower(strings.TrimSpace(s))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, s)
		}
	}

	return unique
}
