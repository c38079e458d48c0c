package modules

import (
	"fmt"
	"strings"
)

// ValidateParams checks params against InputSchema.
// - Required fields: returns error if missing
// - Type check: verifies value matches declared property type
// - Bounds check: numeric values must satisfy minimum/maximum when declared
// - Enum check: string values must be one of the declared options
// Extra params not declared in the schema are passed through (lenient);
// handlers ignore them.
// Returns validated params (shallow copy semantics preserved) or error.
func ValidateParams(schema InputSchema, params map[string]any) (map[string]any, error) {
	if params == nil {
		params = make(map[string]any)
	}

	// Check required fields
	var missing []string
	for _, key := range schema.Required {
		val, exists := params[key]
		if !exists || val == nil {
			missing = append(missing, key)
			continue
		}
		// Check for zero-value strings on required fields
		if s, ok := val.(string); ok && s == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required parameter(s): %s", strings.Join(missing, ", "))
	}

	// Type, bounds and enum checks against schema properties
	for key, val := range params {
		prop, declared := schema.Properties[key]
		if !declared {
			continue
		}
		if val == nil {
			continue
		}
		if err := checkType(key, val, prop.Type); err != nil {
			return nil, err
		}
		if err := checkBounds(key, val, prop); err != nil {
			return nil, err
		}
		if err := checkEnum(key, val, prop); err != nil {
			return nil, err
		}
	}

	return params, nil
}

// checkType verifies that val matches the expected JSON Schema type.
func checkType(key string, val any, expectedType string) error {
	switch expectedType {
	case "string":
		if _, ok := val.(string); !ok {
			return fmt.Errorf("parameter %q: expected string, got %T", key, val)
		}
	case "number", "integer":
		// JSON numbers arrive as float64
		if _, ok := val.(float64); !ok {
			return fmt.Errorf("parameter %q: expected number, got %T", key, val)
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("parameter %q: expected boolean, got %T", key, val)
		}
	case "array":
		if _, ok := val.([]interface{}); !ok {
			return fmt.Errorf("parameter %q: expected array, got %T", key, val)
		}
	case "object":
		if _, ok := val.(map[string]interface{}); !ok {
			return fmt.Errorf("parameter %q: expected object, got %T", key, val)
		}
	// "" or unknown types: skip check (lenient)
	}
	return nil
}

// checkBounds verifies declared minimum/maximum on numeric values.
func checkBounds(key string, val any, prop Property) error {
	n, ok := val.(float64)
	if !ok {
		return nil
	}
	if prop.Minimum != nil && n < *prop.Minimum {
		return fmt.Errorf("parameter %q: must be >= %v, got %v", key, *prop.Minimum, n)
	}
	if prop.Maximum != nil && n > *prop.Maximum {
		return fmt.Errorf("parameter %q: must be <= %v, got %v", key, *prop.Maximum, n)
	}
	return nil
}

// checkEnum verifies that a string value is one of the declared options.
func checkEnum(key string, val any, prop Property) error {
	if len(prop.Enum) == 0 {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return nil
	}
	for _, allowed := range prop.Enum {
		if s == allowed {
			return nil
		}
	}
	return fmt.Errorf("parameter %q: must be one of %s, got %q", key, strings.Join(prop.Enum, ", "), s)
}

// findTool looks up a tool by name from a tool list.
func findTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
