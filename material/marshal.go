package material

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Item.
func (it *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.ToMap())
}

// ToMap converts it and its subtree to native Go maps and slices.
//
// Every item maps to an object with its "kind" and "level", plus "name",
// "args", "bases", and "children" when present. The root carries only its
// "children".
func (it *Item) ToMap() map[string]any {
	result := make(map[string]any)

	if !it.IsRoot() {
		result["kind"] = it.kind
		result["level"] = it.level

		if it.named {
			result["name"] = it.name
		}

		if len(it.args) > 0 {
			result["args"] = it.Args()
		}

		if len(it.bases) > 0 {
			result["bases"] = it.Bases()
		}
	}

	if len(it.children) > 0 {
		result["children"] = itemsToMaps(it.children)
	}

	return result
}

func itemsToMaps(items []*Item) []any {
	out := make([]any, len(items))
	for i, c := range items {
		out[i] = c.ToMap()
	}

	return out
}
