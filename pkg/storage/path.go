package storage

import (
	"reflect"
	"strings"
)

// Path is an ordered sequence of keys into the storage tree.
type Path []string

// ParsePath splits a dotted name into a Path.
// An empty name yields the empty path, which addresses the whole tree.
func ParsePath(name string) Path {
	if name == "" {
		return Path{}
	}
	return strings.Split(name, ".")
}

// lookup walks tree along path. It returns def as soon as a step cannot descend:
// the node is not a mapping (arrays included) or lacks the key.
func lookup(tree map[string]any, path Path, def any) any {
	var node any = tree
	for _, key := range path {
		next, ok := child(node, key)
		if !ok {
			return def
		}
		node = next
	}
	return node
}

// assign walks tree along path creating empty mappings for missing intermediates
// and sets the final key. Intermediates holding a non-mapping value are replaced.
func assign(tree map[string]any, path Path, value any) {
	node := tree
	for _, key := range path[:len(path)-1] {
		next, ok := mapping(node[key])
		if !ok {
			next = make(map[string]any)
		}
		node[key] = next
		node = next
	}
	node[path[len(path)-1]] = value
}

// child returns node[key] when node is a string-keyed map holding key.
func child(node any, key string) (any, bool) {
	if m, ok := node.(map[string]any); ok {
		v, ok := m[key]
		return v, ok
	}
	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

// mapping returns v as a map[string]any. Other string-keyed maps are copied
// into a new map[string]any so that paths can descend and assign through them.
func mapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		if m == nil {
			m = make(map[string]any)
		}
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}
