package scenegraph

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Attrs is an open attribute bag used to create and update nodes and edges.
// Values may come from Go callers or from a decoded JSON document.
type Attrs map[string]any

// Clone returns a shallow copy of a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return Attrs{}
	}
	return maps.Clone(a)
}

// pop removes key from a and reports its value.
func (a Attrs) pop(key string) (any, bool) {
	v, ok := a[key]
	if ok {
		delete(a, key)
	}
	return v, ok
}

func toString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidAttribute, key, v)
}

func toFloat(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidAttribute, key, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidAttribute, key, v)
}

func toInt(key string, v any) (int, error) {
	if n, ok := v.(json.Number); ok {
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidAttribute, key, err)
		}
		return int(i), nil
	}
	f, err := toFloat(key, v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func toBool(key string, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidAttribute, key, v)
}

func toList(key string, v any) ([]any, error) {
	switch l := v.(type) {
	case []any:
		return l, nil
	case []int:
		out := make([]any, len(l))
		for i, x := range l {
			out[i] = x
		}
		return out, nil
	case []float64:
		out := make([]any, len(l))
		for i, x := range l {
			out[i] = x
		}
		return out, nil
	case [2]float64:
		return []any{l[0], l[1]}, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrInvalidAttribute, key, v)
}

func toColor(key string, v any) ([]int, error) {
	l, err := toList(key, v)
	if err != nil {
		return nil, err
	}
	color := make([]int, len(l))
	for i, c := range l {
		if color[i], err = toInt(key, c); err != nil {
			return nil, err
		}
	}
	return color, nil
}

func toPos(key string, v any) ([2]float64, error) {
	var pos [2]float64
	l, err := toList(key, v)
	if err != nil {
		return pos, err
	}
	if len(l) != 2 {
		return pos, fmt.Errorf("%w: %s must have 2 coordinates, got %d", ErrInvalidAttribute, key, len(l))
	}
	for i := range pos {
		if pos[i], err = toFloat(key, l[i]); err != nil {
			return pos, err
		}
	}
	return pos, nil
}
