// SPDX-License-Identifier: MPL-2.0

package reducer

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/scanbridge/scanbridge/internal/model"
	"github.com/scanbridge/scanbridge/internal/props"
	"github.com/scanbridge/scanbridge/internal/snapshot"
)

// declared merges the property blocks of one module. A later block of the
// same origin replaces earlier values; blocks of different origins must
// agree.
func declared(n *model.Node) (map[string]string, []error) {
	values := make(map[string]string)
	origins := make(map[string]string)
	var errs []error
	for _, block := range n.Project.Properties {
		strs := blockStrings(block)
		for _, key := range slices.Sorted(maps.Keys(strs)) {
			v := strs[key]
			if prev, ok := values[key]; ok && origins[key] != block.Origin && prev != v {
				errs = append(errs, &ConflictError{
					Module:  n.Path,
					Key:     key,
					Values:  [2]string{prev, v},
					Origins: [2]string{origins[key], block.Origin},
				})
				continue
			}
			values[key] = v
			origins[key] = block.Origin
		}
	}
	return values, errs
}

// blockStrings renders a block's values as property strings.
func blockStrings(b snapshot.PropertyBlock) map[string]string {
	out := make(map[string]string, len(b.Values))
	for k, v := range b.Values {
		out[k] = formatValue(v)
	}
	return out
}

// formatValue renders a decoded property value. Lists are joined the way
// path lists are, so an element holding a comma stays one element.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, formatValue(e))
		}
		return props.JoinCSV(parts)
	case []string:
		return props.JoinCSV(x)
	default:
		return fmt.Sprint(x)
	}
}

// split separates a child module's declarations into those that stay on the
// module and root-only keys it may not set. The root keeps everything.
func split(n *model.Node, values map[string]string) (kept map[string]string, dropped []model.Diagnostic) {
	if n.IsRoot() {
		return values, nil
	}
	kept = make(map[string]string, len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if props.IsRootOnly(key) {
			dropped = append(dropped, model.Warning(model.CodeRootOnlyKeyIgnored, n.Path, "",
				"property "+key+" can only be set on the root module and was ignored", nil))
			continue
		}
		kept[key] = values[key]
	}
	return kept, dropped
}

// inheritable returns the declarations that flow to descendants.
func inheritable(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if props.IsRootOnly(k) || props.IsModuleLocal(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// unspecifiedVersion is what the build reports for a project without one.
const unspecifiedVersion = "unspecified"

func projectKey(p *snapshot.Project) string {
	if p.Group == "" {
		return p.Name
	}
	return p.Group + ":" + p.Name
}
