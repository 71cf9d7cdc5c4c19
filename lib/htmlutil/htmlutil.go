package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText strips non printable characters, trims the string and collapses
// runs of whitespace into a single space.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}

// Text returns the cleaned text of every node in the selection.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return CleanText(buffer.String())
}

// FirstMatch tries each selector in order against the children of sel and
// returns the first non-empty match, the returned bool is false if no
// selector matched anything.
func FirstMatch(sel *goquery.Selection, selectors []string) (*goquery.Selection, bool) {
	for _, s := range selectors {
		found := sel.Find(s)
		if found.Length() > 0 {
			return found, true
		}
	}
	return nil, false
}

// FirstMatchExcept is FirstMatch with the nodes of `exclude` removed from
// every candidate match.
func FirstMatchExcept(sel *goquery.Selection, selectors []string, exclude *goquery.Selection) (*goquery.Selection, bool) {
	for _, s := range selectors {
		found := sel.Find(s).NotSelection(exclude)
		if found.Length() > 0 {
			return found, true
		}
	}
	return nil, false
}

// HasAnyClass returns true if the selection has at least one of the classes.
func HasAnyClass(sel *goquery.Selection, classes []string) bool {
	for _, c := range classes {
		if sel.HasClass(c) {
			return true
		}
	}
	return false
}
