package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	pm "github.com/meysamhadeli/revai/providers/models"
)

// decodeStrict checks text against schema and only then decodes it into out.
// It stops at the first missing or mistyped field.
func decodeStrict(text string, schema *pm.Schema, out any) error {
	var tree any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &tree); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := check("$", schema, tree); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func check(path string, s *pm.Schema, v any) error {
	switch s.Type {
	case pm.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mistyped(path, "object", v)
		}
		for _, name := range s.Required {
			if val, ok := obj[name]; !ok || val == nil {
				return fmt.Errorf("%w: missing field '%s.%s'", ErrMalformedResponse, path, name)
			}
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			val, ok := obj[name]
			if !ok || val == nil {
				continue
			}
			if err := check(path+"."+name, s.Properties[name], val); err != nil {
				return err
			}
		}
	case pm.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return mistyped(path, "array", v)
		}
		for i, item := range arr {
			if err := check(fmt.Sprintf("%s[%d]", path, i), s.Items, item); err != nil {
				return err
			}
		}
	case pm.TypeString:
		text, ok := v.(string)
		if !ok {
			return mistyped(path, "string", v)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, text) {
			return fmt.Errorf("%w: field '%s' has value '%s', want one of %v", ErrMalformedResponse, path, text, s.Enum)
		}
	case pm.TypeNumber, pm.TypeInteger:
		n, ok := v.(float64)
		if !ok {
			return mistyped(path, "number", v)
		}
		if s.Type == pm.TypeInteger && n != math.Trunc(n) {
			return mistyped(path, "integer", v)
		}
		if (s.Minimum != nil && n < *s.Minimum) || (s.Maximum != nil && n > *s.Maximum) {
			return fmt.Errorf("%w: field '%s' value %v out of range", ErrMalformedResponse, path, n)
		}
	case pm.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mistyped(path, "boolean", v)
		}
	}
	return nil
}

func mistyped(path, want string, got any) error {
	return fmt.Errorf("%w: field '%s' is %T, want %s", ErrMalformedResponse, path, got, want)
}
