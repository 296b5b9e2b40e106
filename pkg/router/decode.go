package router

import (
	"fmt"
	"reflect"
	"strconv"
)

// DecodeParams fills the `param`-tagged fields of the struct target points
// to from route params.
func DecodeParams(params map[string]string, target any) error {
	return decode(params, target, "param")
}

// DecodeQuery fills the `query`-tagged fields of the struct target points
// to from a query. Missing keys leave their fields untouched, so defaults
// can be set before decoding.
func DecodeQuery(query map[string]string, target any) error {
	return decode(query, target, "query")
}

func decode(values map[string]string, target any, tag string) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get(tag)
		if name == "" {
			continue
		}

		value, ok := values[name]
		if !ok || value == "" {
			continue
		}

		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if err := setField(fv, value); err != nil {
			return fmt.Errorf("decoding %s %q: %w", tag, name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
