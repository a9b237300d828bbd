// Package normalize turns FPDS ATOM XML into flat path-keyed entries.
//
// The pipeline is Parse -> ExtractEntries -> Flatten, composed by Process.
// Parsing produces a generic tree: an element with element children becomes
// a map, repeated siblings become a []any, and a text-only element becomes
// its trimmed text. Namespace prefixes are dropped and attributes ignored.
package normalize

import (
	"sort"
	"strings"

	"github.com/Sternrassler/fpds-client/pkg/apierror"
	"github.com/antchfx/xmlquery"
)

// Delimiter joins ancestor keys into a path-key.
const Delimiter = "__"

// Tree is a parsed XML document keyed by the root element name.
type Tree = map[string]any

// RawEntry maps path-keys to scalar leaves. Arrays are kept as-is.
type RawEntry = map[string]any

// Parse parses an XML payload into a Tree. Empty input, malformed XML and
// documents without exactly one root element fail with a KindParse error.
func Parse(xml string) (Tree, error) {
	if strings.TrimSpace(xml) == "" {
		return nil, apierror.Parse("empty XML payload", nil)
	}

	doc, err := xmlquery.Parse(strings.NewReader(xml))
	if err != nil {
		return nil, apierror.Parse("malformed XML", err)
	}

	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		if root != nil {
			return nil, apierror.Parse("multiple root elements", nil)
		}
		root = n
	}
	if root == nil {
		return nil, apierror.Parse("no root element", nil)
	}
	return Tree{root.Data: convert(root)}, nil
}

// convert builds the generic value for an element node.
func convert(n *xmlquery.Node) any {
	var children map[string]any
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if children == nil {
			children = make(map[string]any)
		}
		v := convert(c)
		switch existing := children[c.Data].(type) {
		case nil:
			children[c.Data] = v
		case []any:
			children[c.Data] = append(existing, v)
		default:
			children[c.Data] = []any{existing, v}
		}
	}
	if children != nil {
		return children
	}
	return strings.TrimSpace(n.InnerText())
}

// ExtractEntries returns the feed.entry nodes. A missing feed or entry level
// yields an empty slice; a single entry yields a one-element slice.
func ExtractEntries(tree Tree) []map[string]any {
	feed, ok := tree["feed"].(map[string]any)
	if !ok {
		return []map[string]any{}
	}

	switch v := feed["entry"].(type) {
	case nil:
		return []map[string]any{}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			out = append(out, asEntry(item))
		}
		return out
	default:
		return []map[string]any{asEntry(v)}
	}
}

// asEntry treats a text-only entry as an entry with no fields.
func asEntry(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Walk visits every leaf of entry in depth-first order, siblings in sorted
// key order, using an explicit stack. Nested maps are descended; arrays and
// scalars are leaves. Empty nested maps produce no leaves.
func Walk(entry map[string]any, visit func(key string, value any)) {
	type item struct {
		path  string
		value any
	}

	var stack []item
	push := func(prefix string, node map[string]any) {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		// Reverse so the smallest key pops first.
		for i := len(keys) - 1; i >= 0; i-- {
			path := keys[i]
			if prefix != "" {
				path = prefix + Delimiter + keys[i]
			}
			stack = append(stack, item{path: path, value: node[keys[i]]})
		}
	}

	push("", entry)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if child, ok := top.value.(map[string]any); ok {
			push(top.path, child)
			continue
		}
		visit(top.path, top.value)
	}
}

// Flatten collapses a nested entry into a single-level RawEntry.
func Flatten(entry map[string]any) RawEntry {
	out := make(RawEntry)
	Walk(entry, func(key string, value any) {
		out[key] = value
	})
	return out
}

// Process parses xml and returns one flattened entry per feed entry, in
// document order.
func Process(xml string) ([]RawEntry, error) {
	tree, err := Parse(xml)
	if err != nil {
		return nil, err
	}

	entries := ExtractEntries(tree)
	out := make([]RawEntry, len(entries))
	for i, e := range entries {
		out[i] = Flatten(e)
	}
	return out, nil
}
