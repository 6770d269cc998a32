package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// schemaForType returns a JSON schema fragment for a reflect.Type. The
// inSlice flag suppresses the nullable marker on slice elements.
func schemaForType(t reflect.Type, inSlice bool) map[string]interface{} {
	result := make(map[string]interface{})

	// time.Time is represented as an ISO 8601 string.
	if t == reflect.TypeOf(time.Time{}) {
		result["type"] = "string"
		result["format"] = "date-time"
		return result
	}

	if t.Kind() == reflect.Ptr {
		result = schemaForType(t.Elem(), inSlice)
		if !inSlice {
			result["nullable"] = true
		}
		return result
	}

	switch t.Kind() {
	case reflect.Bool:
		result["type"] = "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		result["type"] = "integer"
	case reflect.Float32, reflect.Float64:
		result["type"] = "number"
	case reflect.String:
		result["type"] = "string"
	case reflect.Slice, reflect.Array:
		result["type"] = "array"
		result["items"] = schemaForType(t.Elem(), true)
	case reflect.Map:
		result["type"] = "object"
		result["additionalProperties"] = schemaForType(t.Elem(), false)
	case reflect.Struct:
		result["type"] = "object"
		properties, required := structToProperties(t)
		result["properties"] = properties
		if len(required) > 0 {
			result["required"] = required
		}
	default:
		result["type"] = "string"
	}
	return result
}

// structToProperties converts a struct type into schema properties and the
// list of required field names. Non-pointer fields without omitempty are
// required.
func structToProperties(t reflect.Type) (map[string]map[string]interface{}, []string) {
	properties := make(map[string]map[string]interface{})
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitempty, skip := parseJSONTag(field)
		if skip {
			continue
		}
		fieldSchema := schemaForType(field.Type, false)
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}
		properties[name] = fieldSchema
		if field.Type.Kind() != reflect.Ptr && !omitempty {
			required = append(required, name)
		}
	}
	return properties, required
}

func parseJSONTag(field reflect.StructField) (name string, omitempty, skip bool) {
	name = field.Name
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false, true
	}
	if parts[0] != "" {
		name = parts[0]
	}
	for _, option := range parts[1:] {
		if option == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// Load populates the input schema from a struct type's exported fields.
func (s *ToolInputSchema) Load(v any) error {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("expected a struct type, got %s", t.Kind())
	}
	properties, required := structToProperties(t)
	s.Type = "object"
	s.Properties = properties
	s.Required = required
	return nil
}

// MustLoad is Load for statically known argument structs; it panics on a
// non-struct, which can only happen at registration time.
func MustLoad(v any) ToolInputSchema {
	var s ToolInputSchema
	if err := s.Load(v); err != nil {
		panic(err)
	}
	return s
}
