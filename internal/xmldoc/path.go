package xmldoc

import (
	"strings"
)

type nameTest struct {
	anyNS    bool
	anyLocal bool
	uri      string
	local    string
	// unbound is set when the step used a prefix missing from the
	// namespace map; such a step never matches.
	unbound bool
}

func (t nameTest) matchElement(n *Node) bool {
	if t.unbound {
		return false
	}
	if !t.anyLocal && n.el.Tag != t.local {
		return false
	}
	return t.anyNS || n.NamespaceURI() == t.uri
}

func parseNameTest(ns Namespaces, s string) nameTest {
	if s == "*" {
		return nameTest{anyNS: true, anyLocal: true}
	}
	prefix, local, found := strings.Cut(s, ":")
	if !found {
		return nameTest{local: s}
	}
	if prefix == "*" {
		return nameTest{anyNS: true, local: local}
	}
	if prefix == "xml" {
		return nameTest{uri: NamespaceXML, local: local}
	}
	uri, ok := ns[prefix]
	if !ok {
		return nameTest{unbound: true}
	}
	return nameTest{uri: uri, local: local}
}

// parseStep splits "(a|b)" alternations into individual name tests.
func parseStep(ns Namespaces, step string) []nameTest {
	step = strings.TrimSpace(step)
	if strings.HasPrefix(step, "(") && strings.HasSuffix(step, ")") {
		step = step[1 : len(step)-1]
	}
	parts := strings.Split(step, "|")
	tests := make([]nameTest, 0, len(parts))
	for _, p := range parts {
		tests = append(tests, parseNameTest(ns, strings.TrimSpace(p)))
	}
	return tests
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "./")
	var steps []string
	depth := 0
	start := 0
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '/':
			if depth == 0 {
				steps = append(steps, path[start:i])
				start = i + 1
			}
		}
	}
	steps = append(steps, path[start:])
	out := steps[:0]
	for _, s := range steps {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

func (n *Node) selectSteps(ns Namespaces, steps []string) []*Node {
	current := []*Node{n}
	for _, step := range steps {
		tests := parseStep(ns, step)
		var next []*Node
		for _, c := range current {
			for _, child := range c.el.ChildElements() {
				cn := &Node{el: child}
				for _, t := range tests {
					if t.matchElement(cn) {
						next = append(next, cn)
						break
					}
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// All returns every element matched by path, in document order.
func (n *Node) All(ns Namespaces, path string) []*Node {
	if n == nil {
		return nil
	}
	return n.selectSteps(ns, splitPath(path))
}

// One returns the first element matched by path, or nil.
func (n *Node) One(ns Namespaces, path string) *Node {
	all := n.All(ns, path)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// Values evaluates path and returns string results. A path ending in
// "text()" yields the character data of each matched element, a path ending
// in "@attr" yields attribute values, and an element path yields the text
// content of each element. Values are trimmed of surrounding whitespace.
func (n *Node) Values(ns Namespaces, path string) []string {
	if n == nil {
		return nil
	}
	steps := splitPath(path)
	if len(steps) == 0 {
		return []string{strings.TrimSpace(n.Text())}
	}
	last := steps[len(steps)-1]
	var nodes []*Node
	if last == "text()" || strings.HasPrefix(last, "@") {
		nodes = n.selectSteps(ns, steps[:len(steps)-1])
	} else {
		nodes = n.selectSteps(ns, steps)
		last = ""
	}

	var out []string
	for _, node := range nodes {
		switch {
		case strings.HasPrefix(last, "@"):
			if v, ok := node.attrByQName(ns, last[1:]); ok {
				out = append(out, strings.TrimSpace(v))
			}
		default:
			out = append(out, strings.TrimSpace(node.Text()))
		}
	}
	return out
}

// Value returns the first result of Values and whether there was one.
func (n *Node) Value(ns Namespaces, path string) (string, bool) {
	vals := n.Values(ns, path)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// String returns the first result of Values, or "" when there is none.
func (n *Node) String(ns Namespaces, path string) string {
	v, _ := n.Value(ns, path)
	return v
}

func (n *Node) attrByQName(ns Namespaces, qname string) (string, bool) {
	prefix, local, found := strings.Cut(qname, ":")
	if !found {
		return n.Attr(qname)
	}
	if prefix == "xml" {
		return n.AttrNS(NamespaceXML, local)
	}
	uri, ok := ns[prefix]
	if !ok {
		return "", false
	}
	return n.AttrNS(uri, local)
}
