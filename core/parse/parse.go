package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs parses model output into T and reports why it could not.
//
// Scalar kinds (string, bool, ints, uints, floats) are converted directly.
// When conversion fails the content is checked for a {"type": ..., "value": ...}
// envelope, which models sometimes emit when they confuse a schema with data.
//
// Every other kind is decoded as JSON in escalating steps:
//
//  1. strict decode of content;
//  2. strict decode of RepairTruncated(content);
//  3. decode of jsonrepair's output, which also fixes single quotes,
//     unquoted keys, trailing commas, comments and code fences;
//  4. decode after unwrapping schema envelopes from the step 3 document.
//
// Unlike ParseWithFallback this is a best-effort parser for malformed text,
// not only truncated text, and it returns an error instead of a default.
//
//	type Question struct {
//	    Prompt  string   `json:"prompt"`
//	    Options []string `json:"options"`
//	}
//
//	q, err := ParseStringAs[Question](`{prompt: 'Define osmosis', options: ["a", "b",]}`)
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := unwrapScalar(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		err := setScalar(target, strings.TrimSpace(content))
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := unwrapScalar(content); unwrapErr == nil {
			if setScalar(target, unwrapped) == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", target.Kind(), err)
	}

	return parseDocument[T](content)
}

func parseDocument[T any](content string) (T, error) {
	value, _, err := Recover[T](content)
	if err == nil {
		return value, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: %w (repair error: %v)", zero, err, repairErr)
	}

	var result T
	decodeErr := json.Unmarshal([]byte(repaired), &result)
	if decodeErr == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		var unwrappedResult T
		if json.Unmarshal([]byte(unwrapped), &unwrappedResult) == nil {
			return unwrappedResult, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", zero, decodeErr, repaired)
}

// setScalar converts s into target's kind, leaving target untouched on error.
func setScalar(target reflect.Value, s string) error {
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		target.SetBool(v)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(s, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(s, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)

	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(s, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)

	default:
		return fmt.Errorf("unsupported scalar kind %s", target.Kind())
	}
	return nil
}

var errNotEnvelope = errors.New("not a schema-wrapped value")

// unwrapScalar returns the value of a {"type": ..., "value": ...} envelope as
// text. Composite values are re-encoded as JSON.
func unwrapScalar(content string) (string, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}

	value, ok := envelopeValue(data)
	if !ok {
		return "", errNotEnvelope
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprint(v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} envelope in a
// JSON document with its value.
//
//	{"name": {"type": "string", "value": "Amina"}, "age": {"type": "integer", "value": 14}}
//
// becomes
//
//	{"name": "Amina", "age": 14}
func unwrapSchemaValues(document string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return "", err
	}

	encoded, err := json.Marshal(unwrapRecursive(data))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func unwrapRecursive(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if value, ok := envelopeValue(v); ok {
			return unwrapRecursive(value)
		}
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = unwrapRecursive(val)
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = unwrapRecursive(val)
		}
		return out

	default:
		return data
	}
}

// envelopeValue reports whether m is exactly {"type": ..., "value": ...}.
func envelopeValue(m map[string]interface{}) (interface{}, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}
