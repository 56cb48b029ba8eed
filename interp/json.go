package interp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jayamlp/jayamlp/scalar"
)

// ToJSON flattens a Value into plain Go values encoding/json can marshal
// directly (nil/bool/float64/string/[]interface{}/map[string]interface{}),
// the shape tester.Harness compares against a json.Unmarshal-decoded
// fixture and cmd/jayamlp's "parse --format json" prints. Every leaf
// scalar string is resolved through scalar.Resolve's untagged path (§6),
// so a fixture's typed int/float/bool/null/timestamp compares correctly
// instead of staying the raw scanned string. Node wrappers collapse
// transparently into their inner value, except that a node invoking a
// recognized mapping rule renders as a JSON object instead of an array:
// the Value algebra (§3) has no dedicated key-value kind, a mapping is
// just a Tuple/Set of (key, value) pairs, so object-vs-array is resolved
// by the invoking rule's name rather than by structural shape alone.
func ToJSON(v Value) interface{} {
	return renderJSON(v, jsonOpts{resolveScalars: true, wrapNodes: false})
}

// ToTreeJSON renders v the way §6 describes for the inspector's tree-mode
// result: every rule invocation becomes an object with name/start/end/expr,
// and leaf scalars stay the raw matched text (no implicit typing) since the
// inspector's job is to show what the grammar matched, not what it means.
// A mapping rule's entries still render as a JSON object rather than an
// array of entry nodes, for the same reason ToJSON does.
func ToTreeJSON(v Value) interface{} {
	return renderJSON(v, jsonOpts{resolveScalars: false, wrapNodes: true})
}

type jsonOpts struct {
	resolveScalars bool
	wrapNodes      bool
}

func renderJSON(v Value, o jsonOpts) interface{} {
	switch v.Kind {
	case KindNone:
		return nil
	case KindStr:
		if o.resolveScalars {
			return scalarToJSON(v.Str)
		}
		return v.Str
	case KindNode:
		expr := nodeExprJSON(v.Node, o)
		if !o.wrapNodes {
			return expr
		}
		return map[string]interface{}{
			"name":  v.Node.Rule,
			"start": v.Node.Start,
			"end":   v.Node.End,
			"expr":  expr,
		}
	case KindTuple:
		return itemsJSON(v.Items, o)
	case KindSet:
		items := itemsJSON(v.Items, o)
		sort.Slice(items, func(i, j int) bool {
			return fmt.Sprint(items[i]) < fmt.Sprint(items[j])
		})
		return items
	default:
		return nil
	}
}

// nodeExprJSON renders n's own value: a map when n invokes a recognized
// mapping rule and its entries decompose cleanly into key/value pairs,
// else n's inner value rendered as usual.
func nodeExprJSON(n *Node, o jsonOpts) interface{} {
	if m, ok := mappingToJSON(n, o); ok {
		return m
	}
	return renderJSON(n.Inner, o)
}

func itemsJSON(items []Value, o jsonOpts) []interface{} {
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = renderJSON(it, o)
	}
	return out
}

// mappingToJSON reports whether n invokes a rule matching the YAML grammar's
// own mapping-rule naming convention (every block/flow mapping production
// name contains "mapping"), and if so builds a JSON object from its entries.
// A singleton entry collapses the same way Tuple/Set themselves do (§3), so
// both the single- and multi-entry cases are handled.
func mappingToJSON(n *Node, o jsonOpts) (map[string]interface{}, bool) {
	if !isMappingRule(n.Rule) {
		return nil, false
	}
	switch entries := n.Inner; entries.Kind {
	case KindNode:
		k, val, ok := entryToJSON(entries.Node, o)
		if !ok {
			return nil, false
		}
		return map[string]interface{}{k: val}, true
	case KindTuple, KindSet:
		m := make(map[string]interface{}, len(entries.Items))
		for _, it := range entries.Items {
			if it.Kind != KindNode {
				return nil, false
			}
			k, val, ok := entryToJSON(it.Node, o)
			if !ok {
				return nil, false
			}
			m[k] = val
		}
		return m, true
	default:
		return nil, false
	}
}

// entryToJSON reduces one map-entry node to its key and value. Its own
// inner value, once any bare literal separator (e.g. a stray ":" that
// folded directly into the entry's Concat rather than through its own
// production) is dropped, is expected to reduce to exactly two components:
// key and value. Any other shape means n isn't really a recognized pair, so
// the caller falls back to generic array rendering instead of guessing.
func entryToJSON(n *Node, o jsonOpts) (string, interface{}, bool) {
	if !isMapEntryRule(n.Rule) {
		return "", nil, false
	}
	items := nonLiteralItems(n.Inner)
	if len(items) != 2 {
		return "", nil, false
	}
	key := renderJSON(items[0], o)
	val := renderJSON(items[1], o)
	return fmt.Sprint(key), val, true
}

// nonLiteralItems reduces v to its non-separator components: v itself when
// it isn't a Tuple, else its Items with any bare literal-string element
// dropped (a separator character matched directly rather than through its
// own production never carries key/value meaning).
func nonLiteralItems(v Value) []Value {
	if v.Kind != KindTuple {
		return []Value{v}
	}
	var out []Value
	for _, it := range v.Items {
		if it.Kind == KindStr {
			continue
		}
		out = append(out, it)
	}
	return out
}

// isMappingRule and isMapEntryRule encode the YAML 1.2.2 grammar's own
// production-naming convention: every block/flow mapping rule name contains
// "mapping", and every entry rule name contains "map-entry" (block) or
// "flow-pair" (flow). This is the "tree-mode-driven conversion keyed off
// the grammar's own mapping-entry rule names" this package uses in place of
// a dedicated Value kind, since a generic Tuple/Set of pairs is otherwise
// structurally indistinguishable from a same-shaped sequence.
func isMappingRule(name string) bool {
	return strings.Contains(name, "mapping")
}

func isMapEntryRule(name string) bool {
	return strings.Contains(name, "map-entry") || strings.Contains(name, "flow-pair")
}

// scalarToJSON resolves s through scalar.Resolve's untagged path, which
// always succeeds (§6: str is the fallback schema), and projects the result
// onto the handful of types encoding/json already knows how to marshal.
// Int renders as float64 alongside Float since JSON itself has only one
// number type, matching what json.Unmarshal decodes a fixture's numbers
// into.
func scalarToJSON(s string) interface{} {
	v, _ := scalar.Resolve(s, "")
	switch v.Kind {
	case scalar.KindNull:
		return nil
	case scalar.KindBool:
		return v.Bool
	case scalar.KindInt:
		return float64(v.Int)
	case scalar.KindFloat:
		return v.Float
	case scalar.KindTimestamp:
		return v.Timestamp.Format(time.RFC3339Nano)
	case scalar.KindBinary:
		return string(v.Binary)
	default:
		return v.Str
	}
}
