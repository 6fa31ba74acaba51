package client

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var invisibleTags = map[string]bool{"script": true, "style": true, "noscript": true, "template": true}

// joinedText trims every text node under sel and joins the non-empty ones with sep.
// Elements named in skip are left out together with their subtree.
func joinedText(sel *goquery.Selection, sep string, skip map[string]bool) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, skip, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, skip map[string]bool, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	case html.ElementNode:
		if skip[n.Data] {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, skip, parts)
	}
}

// inlineText is the visible text of sel on one line.
func inlineText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(joinedText(sel, " ", invisibleTags)), " ")
}

// firstTextMatch walks the document in order and returns the element holding the
// first text node matching re. The element may be much larger than the phrase.
func firstTextMatch(doc *goquery.Document, re *regexp.Regexp) *goquery.Selection {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && invisibleTags[n.Data] {
			return
		}
		if n.Type == html.TextNode && n.Parent != nil && n.Parent.Type == html.ElementNode && re.MatchString(n.Data) {
			found = n.Parent
			return
		}
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	if found == nil {
		return nil
	}
	return doc.FindNodes(found)
}
