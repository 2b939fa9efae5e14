package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// lineBreakTags are elements that terminate a visual line of text.
var lineBreakTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "div": true, "dd": true, "dt": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// skippedTags are elements whose text content is never user-visible.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// nodeText collects the visible text of n and its descendants, joining
// fragments with single spaces and collapsing runs of whitespace. Text is
// NFC-normalized so regex matching sees composed characters.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		case html.ElementNode:
			if skippedTags[node.Data] {
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return norm.NFC.String(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

// nodeLines collects the visible text of n split into lines at block-level
// element boundaries and <br> tags, mirroring how the text renders.
func nodeLines(n *html.Node) []string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			return
		}
		if node.Type == html.ElementNode {
			if skippedTags[node.Data] {
				return
			}
			if lineBreakTags[node.Data] {
				b.WriteString("\n")
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if node.Type == html.ElementNode && lineBreakTags[node.Data] {
			b.WriteString("\n")
		}
	}
	walk(n)

	var lines []string
	for _, raw := range strings.Split(b.String(), "\n") {
		line := norm.NFC.String(strings.Join(strings.Fields(raw), " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// directChildElements counts n's immediate element children.
func directChildElements(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

// hasAncestor reports whether any ancestor of n is one of the given tags.
func hasAncestor(n *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, tag := range tags {
			if p.Data == tag {
				return true
			}
		}
	}
	return false
}

// prevElementSibling returns the nearest preceding element sibling of n.
func prevElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// prevHeading returns the nearest heading element that precedes n in
// document order, or nil.
func prevHeading(n *html.Node) *html.Node {
	for cur := previousInDocument(n); cur != nil; cur = previousInDocument(cur) {
		if cur.Type == html.ElementNode && headingTags[cur.Data] {
			return cur
		}
	}
	return nil
}

// previousInDocument steps backwards through the document: the deepest
// last descendant of the previous sibling, else the parent.
func previousInDocument(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		cur := n.PrevSibling
		for cur.LastChild != nil {
			cur = cur.LastChild
		}
		return cur
	}
	return n.Parent
}
