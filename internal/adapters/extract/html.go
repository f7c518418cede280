package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Elements whose content is never visible text.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"meta":     true,
	"link":     true,
	"noscript": true,
	"template": true,
}

// Elements that start a new line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true,
}

// HTML extracts the visible text of an HTML document. Entities are decoded by
// the parser; scripts, styles and the head are skipped.
type HTML struct{}

// Extract implements ports.Extractor.
func (HTML) Extract(data []byte) (string, error) {
	source, err := decodeText(data)
	if err != nil {
		return "", err
	}
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("html parse: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				sb.WriteByte('\n')
				defer sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return normalize(sb.String()), nil
}
