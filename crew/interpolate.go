package crew

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholders look like {topic}; braces around anything else, json included, are left alone
var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_\-]*)\}`)

// Interpolate replaces {key} placeholders in s with inputs[key]
func Interpolate(s string, inputs map[string]string) (string, error) {
	var missing []string
	ret := placeholderRegex.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := inputs[key]; ok {
			return v
		}
		missing = append(missing, key)
		return m
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(missing, ", "))
	}
	return ret, nil
}

func interpolateAll(inputs map[string]string, fields ...*string) error {
	for _, f := range fields {
		v, err := Interpolate(*f, inputs)
		if err != nil {
			return err
		}
		*f = strings.TrimSpace(v)
	}
	return nil
}
