// Package xmldoc is a small read-only DOM over github.com/beevik/etree with
// namespace-aware path queries.
//
// Queries are relative location paths made of child steps separated by "/".
// A step is "prefix:local", an unprefixed "local" (no namespace), "*:local"
// (any namespace), "*" (any element) or an alternation "(a|b)". The final
// step may instead be "text()" or "@attr" / "@prefix:attr".
package xmldoc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// NamespaceXML is the namespace bound to the reserved "xml" prefix.
const NamespaceXML = "http://www.w3.org/XML/1998/namespace"

// ErrNoRoot is returned when a document has no root element.
var ErrNoRoot = errors.New("xmldoc: document has no root element")

// Namespaces maps query prefixes to namespace URIs.
type Namespaces map[string]string

// Node is an element in a parsed document.
type Node struct {
	el *etree.Element
}

// Parse parses data and returns the root element.
func Parse(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmldoc: parse: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return &Node{el: root}, nil
}

// Local returns the local name of the element.
func (n *Node) Local() string {
	return n.el.Tag
}

// NamespaceURI returns the namespace URI of the element, or "" if it has none.
func (n *Node) NamespaceURI() string {
	return resolvePrefix(n.el, n.el.Space)
}

// Is reports whether the element has the given namespace URI and local name.
func (n *Node) Is(uri, local string) bool {
	return n.el.Tag == local && n.NamespaceURI() == uri
}

// Attr returns the value of an unqualified attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.el.Attr {
		if a.Space == "" && a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrNS returns the value of the attribute with the given namespace URI and
// local name.
func (n *Node) AttrNS(uri, local string) (string, bool) {
	if uri == "" {
		return n.Attr(local)
	}
	for _, a := range n.el.Attr {
		if a.Key != local || a.Space == "" || a.Space == "xmlns" {
			continue
		}
		if resolvePrefix(n.el, a.Space) == uri {
			return a.Value, true
		}
	}
	return "", false
}

// Children returns the child elements in document order.
func (n *Node) Children() []*Node {
	kids := n.el.ChildElements()
	out := make([]*Node, len(kids))
	for i, k := range kids {
		out[i] = &Node{el: k}
	}
	return out
}

// HasChildElements reports whether the element contains any element children.
func (n *Node) HasChildElements() bool {
	for _, tok := range n.el.Child {
		if _, ok := tok.(*etree.Element); ok {
			return true
		}
	}
	return false
}

// Text returns the concatenated character data of the element and all of
// its descendants.
func (n *Node) Text() string {
	var b strings.Builder
	collectText(n.el, &b)
	return b.String()
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			collectText(t, b)
		}
	}
}

// InnerXML serializes the content of the element, excluding the element's
// own start and end tags. Each top-level element in the output redeclares
// the namespaces it inherits from its ancestors, so the fragment parses on
// its own.
func (n *Node) InnerXML() (string, error) {
	doc := etree.NewDocument()
	for _, tok := range n.el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			doc.AddChild(detach(t))
		case *etree.CharData:
			doc.CreateText(t.Data)
		}
	}
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("xmldoc: serialize: %w", err)
	}
	return s, nil
}

// detach copies el and declares on the copy every inherited namespace its
// subtree refers to.
func detach(el *etree.Element) *etree.Element {
	cp := el.Copy()
	used := make(map[string]bool)
	usedPrefixes(el, used)
	prefixes := make([]string, 0, len(used))
	for p := range used {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, p := range prefixes {
		key := "xmlns:" + p
		if p == "" {
			key = "xmlns"
		}
		if cp.SelectAttr(key) != nil {
			continue
		}
		if parent := el.Parent(); parent != nil {
			if uri := resolvePrefix(parent, p); uri != "" {
				cp.CreateAttr(key, uri)
			}
		}
	}
	return cp
}

func usedPrefixes(el *etree.Element, used map[string]bool) {
	if el.Space != "xml" {
		used[el.Space] = true
	}
	for _, a := range el.Attr {
		switch {
		case a.Space == "", a.Space == "xml", a.Space == "xmlns":
		default:
			used[a.Space] = true
		}
	}
	for _, c := range el.ChildElements() {
		usedPrefixes(c, used)
	}
}

// resolvePrefix walks up from el looking for the declaration of prefix.
func resolvePrefix(el *etree.Element, prefix string) string {
	if prefix == "xml" {
		return NamespaceXML
	}
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}
