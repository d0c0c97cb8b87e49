package jptext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CollapseRuby strips ruby annotation markup from a source name, keeping
// only the base reading. Names without ruby markup are returned unchanged.
//
//	<ruby>混沌<rt>カオス</rt></ruby>・ソルジャー → 混沌・ソルジャー
func CollapseRuby(s string) string {
	if !strings.Contains(s, "<ruby>") {
		return s
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), bodyContext())
	if err != nil {
		return s
	}

	var b strings.Builder
	for _, n := range nodes {
		writeBaseText(&b, n)
	}
	return b.String()
}

// writeBaseText appends the text content of n, skipping rt and rp subtrees
// (the reading annotations).
func writeBaseText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "rt" || n.Data == "rp" {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBaseText(b, c)
	}
}

// bodyContext returns a body element for fragment parsing.
func bodyContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
}
