package validation

import (
	"fmt"
)

// Schema is the documented JSON-schema subset: type, required, properties,
// items, minLength/maxLength, minimum/maximum, enum. It is plain
// map[string]interface{} so callers can build schemas inline or decode
// them from JSON without a separate schema type hierarchy.
type Schema map[string]interface{}

// SchemaValidator validates an arbitrary decoded JSON value against a
// Schema.
type SchemaValidator struct {
	Schema Schema
}

func NewSchemaValidator(schema Schema) *SchemaValidator {
	return &SchemaValidator{Schema: schema}
}

func (s *SchemaValidator) Validate(value interface{}) Result {
	var issues []Issue
	validateNode(s.Schema, value, "", &issues)

	res := Result{Valid: true}
	for _, iss := range issues {
		if iss.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, iss)
		} else {
			res.Errors = append(res.Errors, iss)
			res.Valid = false
		}
	}
	return res
}

func validateNode(schema Schema, value interface{}, path string, issues *[]Issue) {
	if schema == nil {
		return
	}

	if want, ok := schema["type"].(string); ok {
		if !typeMatches(want, value) {
			*issues = append(*issues, Issue{
				Path: path, Code: "type_mismatch", Severity: SeverityError,
				Message: fmt.Sprintf("expected type %q, got %s", want, jsonTypeName(value)),
			})
			return
		}
	}

	switch typed := value.(type) {
	case map[string]interface{}:
		if required, ok := schema["required"].([]string); ok {
			for _, field := range required {
				if _, present := typed[field]; !present {
					*issues = append(*issues, Issue{
						Path: joinPath(path, field), Code: "required_field_missing", Severity: SeverityError,
						Message: fmt.Sprintf("missing required field %q", field),
					})
				}
			}
		} else if requiredAny, ok := schema["required"].([]interface{}); ok {
			for _, f := range requiredAny {
				field, _ := f.(string)
				if _, present := typed[field]; !present {
					*issues = append(*issues, Issue{
						Path: joinPath(path, field), Code: "required_field_missing", Severity: SeverityError,
						Message: fmt.Sprintf("missing required field %q", field),
					})
				}
			}
		}

		if props, ok := schema["properties"].(map[string]interface{}); ok {
			for field, sub := range props {
				subSchema, _ := sub.(map[string]interface{})
				if fv, present := typed[field]; present {
					validateNode(Schema(subSchema), fv, joinPath(path, field), issues)
				}
			}
		} else if props, ok := schema["properties"].(Schema); ok {
			for field, sub := range props {
				subSchema, _ := sub.(map[string]interface{})
				if fv, present := typed[field]; present {
					validateNode(Schema(subSchema), fv, joinPath(path, field), issues)
				}
			}
		}

	case []interface{}:
		if items, ok := schema["items"].(map[string]interface{}); ok {
			for i, item := range typed {
				validateNode(Schema(items), item, fmt.Sprintf("%s[%d]", path, i), issues)
			}
		} else if items, ok := schema["items"].(Schema); ok {
			for i, item := range typed {
				validateNode(items, item, fmt.Sprintf("%s[%d]", path, i), issues)
			}
		}

	case string:
		if minLen, ok := numericOf(schema["minLength"]); ok && len(typed) < int(minLen) {
			*issues = append(*issues, Issue{Path: path, Code: "min_length_violation", Severity: SeverityError,
				Message: fmt.Sprintf("length %d is less than minLength %d", len(typed), int(minLen))})
		}
		if maxLen, ok := numericOf(schema["maxLength"]); ok && len(typed) > int(maxLen) {
			*issues = append(*issues, Issue{Path: path, Code: "max_length_violation", Severity: SeverityError,
				Message: fmt.Sprintf("length %d exceeds maxLength %d", len(typed), int(maxLen))})
		}

	case float64, int, int64:
		n, _ := numericOf(typed)
		if min, ok := numericOf(schema["minimum"]); ok && n < min {
			*issues = append(*issues, Issue{Path: path, Code: "minimum_violation", Severity: SeverityError,
				Message: fmt.Sprintf("value %v is less than minimum %v", n, min)})
		}
		if max, ok := numericOf(schema["maximum"]); ok && n > max {
			*issues = append(*issues, Issue{Path: path, Code: "maximum_violation", Severity: SeverityError,
				Message: fmt.Sprintf("value %v exceeds maximum %v", n, max)})
		}
	}

	if enum, ok := schema["enum"].([]interface{}); ok {
		found := false
		for _, e := range enum {
			if structuralEqual(e, value) {
				found = true
				break
			}
		}
		if !found {
			*issues = append(*issues, Issue{Path: path, Code: "enum_violation", Severity: SeverityError,
				Message: fmt.Sprintf("value %v is not one of the allowed enum values", value)})
		}
	}
}

func typeMatches(want string, value interface{}) bool {
	switch want {
	case "null":
		return value == nil
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer":
		switch n := value.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int64, float64:
			return true
		}
		return false
	case "string":
		_, ok := value.(string)
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	default:
		return true
	}
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}

func numericOf(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func structuralEqual(a, b interface{}) bool {
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if aok && bok {
		return an == bn
	}
	return a == b
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
