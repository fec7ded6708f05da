package htmldoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/pageobject/pkg/finder"
)

// Node is an element of a parsed document.
type Node struct {
	node *html.Node
	path string
}

// Path returns the element's XPath-like location, e.g. /html[1]/body[1]/div[2].
func (n *Node) Path() string {
	return n.path
}

// Tag returns the node's tag name.
func (n *Node) Tag() string {
	return n.node.Data
}

func (n *Node) String() string {
	return n.path
}

func wrap(n *html.Node) *Node {
	return &Node{node: n, path: elementPath(n)}
}

func unwrap(el finder.Element) (*Node, error) {
	n, ok := el.(*Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("htmldoc: foreign element %T", el)
	}
	return n, nil
}

// elementPath numbers each ancestor among its same-tag siblings.
func elementPath(n *html.Node) string {
	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		index := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				index++
			}
		}
		segments = append(segments, fmt.Sprintf("%s[%d]", cur.Data, index))
	}

	// Reverse into root-first order
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}
