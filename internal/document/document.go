// Package document parses configuration documents into a namespace-aware
// node tree. The tree is produced once per parse and is read-only during a
// registration pass.
package document

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Attr is a single attribute with its namespace URI, local name, and value.
// Attribute order is preserved from the document.
type Attr struct {
	Space string
	Name  string
	Value string
}

// Node is one element of the parsed tree. Children holds the direct element
// children in document order; interleaved character data is collected into
// Text.
type Node struct {
	Space    string
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// ErrNoRootElement is returned when the document contains no element.
var ErrNoRootElement = errors.New("document contains no root element")

// Parse reads an XML document and returns its root node. Namespace prefixes
// are resolved to URIs by the decoder, so Node.Space always carries the full
// namespace identifier.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Space: t.Name.Space,
				Tag:   t.Name.Local,
				Attrs: convertAttrs(t.Attr),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("malformed document: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("malformed document: unbalanced end element </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				if text := strings.TrimSpace(string(t)); text != "" {
					stack[len(stack)-1].Text += text
				}
			}
		}
	}

	if root == nil {
		return nil, ErrNoRootElement
	}
	return root, nil
}

func convertAttrs(attrs []xml.Attr) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		// xmlns declarations are namespace plumbing, not data.
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, Attr{Space: a.Name.Space, Name: a.Name.Local, Value: a.Value})
	}
	return out
}

// Attr returns the value of the named un-namespaced attribute, or "" when
// absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Space == "" && a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named un-namespaced attribute is present.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Space == "" && a.Name == name {
			return true
		}
	}
	return false
}

// String renders the node as a tag reference for problem messages.
func (n *Node) String() string {
	if n.Space == "" {
		return "<" + n.Tag + ">"
	}
	return "<{" + n.Space + "}" + n.Tag + ">"
}
