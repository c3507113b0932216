package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeSpace collapses runs of whitespace, including non-breaking spaces,
// to single spaces.
func normalizeSpace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// textOf returns the normalized text of a selection.
func textOf(sel *goquery.Selection) string {
	return normalizeSpace(sel.Text())
}

// stripMarkup unescapes entities and reduces any embedded markup to its text.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return normalizeSpace(s)
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return normalizeSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isBlock(atom.Lookup(name)) {
				b.WriteByte(' ')
			}
		}
	}
}

var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true, atom.Br: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figcaption: true,
	atom.Figure: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

func isBlock(a atom.Atom) bool {
	return blockAtoms[a]
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Svg: true, atom.Iframe: true, atom.Nav: true, atom.Footer: true,
	atom.Button: true, atom.Select: true, atom.Head: true,
}

// skipped reports whether n is never rendered as page text: scripts, controls
// and site furniture. Headers count only at the top of the page or when marked
// as the site banner, since article headers carry the recipe title.
func skipped(n *html.Node) bool {
	if skippedAtoms[n.DataAtom] {
		return true
	}
	switch n.DataAtom {
	case atom.Header:
		if n.Parent != nil && n.Parent.DataAtom == atom.Body {
			return true
		}
		return attrValue(n, "role") == "banner"
	}
	for _, class := range strings.Fields(attrValue(n, "class")) {
		switch class {
		case "site-header", "site-footer", "sidebar", "widget", "comments", "comment-list", "related-posts", "share-buttons", "search-form":
			return true
		}
	}
	return attrValue(n, "id") == "comments"
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// blockLines renders the visible text under nodes as lines, one per block
// element. Navigation, scripts and other chrome are skipped.
func blockLines(nodes []*html.Node) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	flush := func() {
		if line := normalizeSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped(n) {
				return
			}
		}
		block := n.Type == html.ElementNode && isBlock(n.DataAtom)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	flush()
	return lines
}
