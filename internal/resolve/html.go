package resolve

import (
	"strings"

	"golang.org/x/net/html"
)

// parsePage parses an HTML document, tolerating real-world tag soup.
func parsePage(page string) (*html.Node, error) {
	return html.Parse(strings.NewReader(page))
}

// attr returns the value of the named attribute, or an empty string.
func attr(node *html.Node, key string) string {
	for _, attribute := range node.Attr {
		if attribute.Key == key {
			return attribute.Val
		}
	}

	return ""
}

// isElement reports whether the node is an element with the given tag.
func isElement(node *html.Node, tag string) bool {
	return node.Type == html.ElementNode && node.Data == tag
}

// hasClass reports whether the element carries the given class.
func hasClass(node *html.Node, class string) bool {
	for _, candidate := range strings.Fields(attr(node, "class")) {
		if candidate == class {
			return true
		}
	}

	return false
}

// walk visits nodes in document order until visit returns false.
func walk(node *html.Node, visit func(*html.Node) bool) bool {
	if !visit(node) {
		return false
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, visit) {
			return false
		}
	}

	return true
}

// firstMatch returns the first node in document order satisfying match,
// or nil when there is none.
func firstMatch(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node

	walk(root, func(node *html.Node) bool {
		if match(node) {
			found = node

			return false
		}

		return true
	})

	return found
}

// elementChildren returns the element-node children of node in order.
func elementChildren(node *html.Node) []*html.Node {
	var children []*html.Node

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			children = append(children, child)
		}
	}

	return children
}
