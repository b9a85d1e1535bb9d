package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Plain converts Markdown into readable plain text for pipes and dumb
// terminals:
//   - emphasis markers are dropped
//   - headings become upper-case lines
//   - code blocks are indented by four spaces
//   - tables become "header: value" lines
func Plain(markdown string) string {
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	w := &plainWriter{source: source}
	w.walkBlock(doc)
	return strings.TrimRight(w.buf.String(), "\n ")
}

type plainWriter struct {
	source    []byte
	buf       bytes.Buffer
	listDepth int
}

func (w *plainWriter) walkBlock(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *plainWriter) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		w.buf.WriteString(strings.ToUpper(w.textContent(n)))
		w.buf.WriteString("\n\n")

	case *ast.Paragraph:
		w.inlines(n)
		w.buf.WriteString("\n\n")

	case *ast.TextBlock:
		w.inlines(n)
		w.buf.WriteString("\n")

	case *ast.Blockquote:
		sub := &plainWriter{source: w.source}
		sub.walkBlock(n)
		for _, line := range strings.Split(strings.TrimRight(sub.buf.String(), "\n "), "\n") {
			w.buf.WriteString("> ")
			w.buf.WriteString(line)
			w.buf.WriteByte('\n')
		}
		w.buf.WriteByte('\n')

	case *ast.List:
		w.list(n)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.codeLines(n)
		w.buf.WriteByte('\n')

	case *ast.ThematicBreak:
		w.buf.WriteString(strings.Repeat("-", 10))
		w.buf.WriteString("\n\n")

	case *ast.HTMLBlock:
		w.codeLines(n)

	default:
		if t, ok := node.(*east.Table); ok {
			w.table(t)
			return
		}
		if node.HasChildren() {
			w.walkBlock(node)
		}
	}
}

func (w *plainWriter) codeLines(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.buf.WriteString("    ")
		w.buf.Write(seg.Value(w.source))
	}
}

func (w *plainWriter) inlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c)
	}
}

func (w *plainWriter) inline(node ast.Node) {
	switch n := node.(type) {
	case *ast.Text:
		w.buf.Write(n.Text(w.source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.buf.WriteByte('\n')
		}

	case *ast.String:
		w.buf.Write(n.Value)

	case *ast.CodeSpan:
		w.buf.WriteString(w.textContent(n))

	case *ast.Link:
		label := w.textContent(n)
		dest := string(n.Destination)
		if label == "" || label == dest {
			w.buf.WriteString(dest)
		} else {
			fmt.Fprintf(&w.buf, "%s (%s)", label, dest)
		}

	case *ast.AutoLink:
		w.buf.Write(n.URL(w.source))

	case *ast.Image:
		alt := w.textContent(n)
		if alt == "" {
			alt = "image"
		}
		fmt.Fprintf(&w.buf, "[%s] (%s)", alt, n.Destination)

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			w.buf.Write(seg.Value(w.source))
		}

	default:
		if cb, ok := node.(*east.TaskCheckBox); ok {
			if cb.IsChecked {
				w.buf.WriteString("[x] ")
			} else {
				w.buf.WriteString("[ ] ")
			}
			return
		}
		// Emphasis, strikethrough and anything else: keep only the text.
		if node.HasChildren() {
			w.inlines(node)
		}
	}
}

func (w *plainWriter) textContent(n ast.Node) string {
	var buf bytes.Buffer
	w.collectText(n, &buf)
	return buf.String()
}

func (w *plainWriter) collectText(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Text(w.source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			w.collectText(c, buf)
		}
	}
}

func (w *plainWriter) list(n *ast.List) {
	idx := 0
	if n.Start > 0 {
		idx = n.Start - 1
	}
	indent := strings.Repeat("  ", w.listDepth)

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		w.buf.WriteString(indent)
		if n.IsOrdered() {
			idx++
			fmt.Fprintf(&w.buf, "%d. ", idx)
		} else {
			w.buf.WriteString("- ")
		}
		w.listItem(item)
		w.buf.WriteByte('\n')
	}
	if w.listDepth == 0 {
		w.buf.WriteByte('\n')
	}
}

func (w *plainWriter) listItem(item *ast.ListItem) {
	first := true
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if !first {
				w.buf.WriteByte('\n')
				w.buf.WriteString(strings.Repeat("  ", w.listDepth+1))
			}
			w.inlines(n)
			first = false
		case *ast.List:
			w.buf.WriteByte('\n')
			w.listDepth++
			w.list(n)
			w.listDepth--
		default:
			w.block(c)
			first = false
		}
	}
}

func (w *plainWriter) table(t *east.Table) {
	var headers []string
	var rows [][]string
	for child := t.FirstChild(); child != nil; child = child.NextSibling() {
		var cells []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(w.textContent(cell)))
		}
		switch child.(type) {
		case *east.TableHeader:
			headers = cells
		case *east.TableRow:
			rows = append(rows, cells)
		}
	}

	for i, row := range rows {
		for j, cell := range row {
			label := fmt.Sprintf("Column %d", j+1)
			if j < len(headers) && headers[j] != "" {
				label = headers[j]
			}
			fmt.Fprintf(&w.buf, "%s: %s\n", label, cell)
		}
		if i < len(rows)-1 {
			w.buf.WriteByte('\n')
		}
	}
	w.buf.WriteByte('\n')
}
