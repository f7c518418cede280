package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown extracts the readable text of a Markdown document: headings,
// paragraphs, list items, link and image text and code. Markup and raw HTML
// blocks are dropped; each block ends on its own line.
type Markdown struct{}

var md = goldmark.New()

// Extract implements ports.Extractor.
func (Markdown) Extract(data []byte) (string, error) {
	source, err := decodeText(data)
	if err != nil {
		return "", err
	}
	content := []byte(source)
	root := md.Parser().Parse(text.NewReader(content))

	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	err = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock {
				newline()
			}
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(content))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(content))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			newline()
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return normalize(sb.String()), nil
}
