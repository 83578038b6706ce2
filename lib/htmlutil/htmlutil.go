package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

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
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Text extracts the text under node collapsed to single-spaced
// printable form, roughly what a browser would render.
func Text(node *html.Node) string {
	s := innerWhitespace.ReplaceAllString(GetText(node), " ")
	s = removeNonPrintable(s)
	return strings.TrimSpace(s)
}

func Attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// FollowingNodes collects up to limit nodes that match and come after
// start in document order, excluding start's own subtree. Matched
// nodes are still descended into.
func FollowingNodes(root *html.Node, start *html.Node, limit int, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	passed := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || len(out) >= limit {
			return
		}
		if n == start {
			passed = true
			return
		}
		if passed && match(n) {
			out = append(out, n)
			if len(out) >= limit {
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if len(out) >= limit {
				return
			}
			walk(child)
		}
	}
	walk(root)

	return out
}

// LastBefore returns the matching node closest before stop in document
// order, ancestors included, or nil when there is none.
func LastBefore(root *html.Node, stop *html.Node, match func(*html.Node) bool) *html.Node {
	var last *html.Node
	done := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || done {
			return
		}
		if n == stop {
			done = true
			return
		}
		if match(n) {
			last = n
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if done {
				return
			}
			walk(child)
		}
	}
	walk(root)

	return last
}
