package experiments

import (
	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// ParseConfiguration normalizes a configuration document into descriptors.
//
// Two shapes are accepted:
//
//	{"data": [{"name": "a", ...}, {"name": "b", ...}]}   current
//	{"a": {...}, "b": {...}}                              legacy
//
// An object is treated as the current shape when its "data" member is an
// array. Order follows the document. A name repeated in the data array
// keeps its first record; a key repeated in a legacy object keeps its first
// position and its last value. Any decoding problem fails the whole
// document.
func ParseConfiguration(body []byte) ([]Descriptor, error) {
	if !sonic.Valid(body) {
		return nil, malformed("invalid JSON document")
	}

	root, err := sonic.Get(body)
	if err != nil {
		return nil, malformed("%v", err)
	}
	if root.TypeSafe() != ast.V_OBJECT {
		return nil, malformed("top-level value is not an object")
	}

	if data := root.Get("data"); data.Exists() && data.TypeSafe() == ast.V_ARRAY {
		return parseRecords(data)
	}
	return parseLegacy(&root)
}

func parseRecords(data *ast.Node) ([]Descriptor, error) {
	var (
		out  []Descriptor
		seen = make(map[string]struct{})
		bad  error
	)

	err := data.ForEach(func(path ast.Sequence, record *ast.Node) bool {
		if record.TypeSafe() != ast.V_OBJECT {
			bad = malformed("data[%d] is not an object", path.Index)
			return false
		}
		nameNode := record.Get("name")
		if !nameNode.Exists() || nameNode.TypeSafe() != ast.V_STRING {
			bad = malformed("data[%d] has no string name", path.Index)
			return false
		}
		name, err := nameNode.String()
		if err != nil || name == "" {
			bad = malformed("data[%d] has an empty name", path.Index)
			return false
		}

		meta, err := metadataOf(record)
		if err != nil {
			bad = malformed("data[%d]: %v", path.Index, err)
			return false
		}
		delete(meta, "name")

		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			out = append(out, Descriptor{Name: name, Metadata: nilIfEmpty(meta)})
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	if err != nil {
		return nil, malformed("%v", err)
	}
	return out, nil
}

func parseLegacy(root *ast.Node) ([]Descriptor, error) {
	var (
		out  []Descriptor
		seen = make(map[string]int)
		bad  error
	)

	err := root.ForEach(func(path ast.Sequence, value *ast.Node) bool {
		if path.Key == nil || *path.Key == "" {
			bad = malformed("legacy document has an empty experiment name")
			return false
		}
		name := *path.Key

		var meta map[string]any
		if value.TypeSafe() == ast.V_OBJECT {
			m, err := metadataOf(value)
			if err != nil {
				bad = malformed("%s: %v", name, err)
				return false
			}
			meta = m
		}

		// A repeated key keeps its first position and takes the last value.
		if i, dup := seen[name]; dup {
			out[i].Metadata = nilIfEmpty(meta)
			return true
		}
		seen[name] = len(out)
		out = append(out, Descriptor{Name: name, Metadata: nilIfEmpty(meta)})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	if err != nil {
		return nil, malformed("%v", err)
	}
	return out, nil
}

func metadataOf(n *ast.Node) (map[string]any, error) {
	v, err := n.Interface()
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func nilIfEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
