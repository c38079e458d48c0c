package modules

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-faster/jx"
)

// ToJSON marshals any value to a JSON string.
func ToJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(b), nil
}

// EncodeObject builds a JSON object from the given fields with a jx.Encoder,
// writing keys in sorted order so payloads are deterministic.
func EncodeObject(fields map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var e jx.Encoder
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		if err := encodeValue(&e, fields[k]); err != nil {
			return nil, err
		}
	}
	e.ObjEnd()
	return e.Bytes(), nil
}

// encodeValue writes a scalar directly; composite values round-trip through
// encoding/json and are carried as a raw fragment.
func encodeValue(e *jx.Encoder, v any) error {
	switch val := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(val)
	case bool:
		e.Bool(val)
	case float64:
		e.Float64(val)
	case int:
		e.Int(val)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal payload field: %w", err)
		}
		e.Raw(raw)
	}
	return nil
}
