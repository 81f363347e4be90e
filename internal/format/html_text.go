// Package format renders message bodies into plain text for the model.
package format

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText renders an HTML document as plain text. Block elements and
// table rows end a line, script/style/head content is dropped and runs of
// whitespace collapse to a single space. Unparseable input yields "".
func HTMLToText(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	w := &textWriter{}
	w.walk(doc)

	return w.String()
}

type textWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	if n.Type == html.ElementNode && isSkipped(n.Data) {
		return
	}

	if n.Type == html.TextNode {
		w.writeText(n.Data)
		return
	}

	if n.Type == html.ElementNode && n.Data == "br" {
		w.endLine()
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		w.endLine()
	}
}

func (w *textWriter) writeText(s string) {
	for _, field := range strings.Fields(s) {
		if w.cur.Len() > 0 {
			w.cur.WriteByte(' ')
		}
		w.cur.WriteString(field)
	}
}

func (w *textWriter) endLine() {
	if w.cur.Len() == 0 {
		return
	}
	w.lines = append(w.lines, w.cur.String())
	w.cur.Reset()
}

func (w *textWriter) String() string {
	w.endLine()
	return strings.Join(w.lines, "\n")
}

func isSkipped(tag string) bool {
	switch tag {
	case "head", "script", "style", "noscript", "template", "title":
		return true
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "header", "footer", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "pre",
		"table", "tr", "hr":
		return true
	}
	return false
}
