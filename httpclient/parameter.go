package httpclient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parameter is a named form value. Value may be a string, a bool, any
// integer kind, or nil.
type Parameter struct {
	Name  string
	Value any
}

// Param is shorthand for Parameter{Name: name, Value: value}.
func Param(name string, value any) Parameter {
	return Parameter{Name: name, Value: value}
}

// FormField is an encoded form parameter as sent on the wire.
type FormField struct {
	Name  string
	Value string
}

// FormFields flattens params into form fields. Later parameters with the same
// name replace earlier ones but keep the position of the first occurrence.
// true and false encode as "1" and "0"; nil values are left out.
func FormFields(params []Parameter) []FormField {
	order := make([]string, 0, len(params))
	values := make(map[string]any, len(params))
	for _, p := range params {
		if _, seen := values[p.Name]; !seen {
			order = append(order, p.Name)
		}
		values[p.Name] = p.Value
	}

	fields := make([]FormField, 0, len(order))
	for _, name := range order {
		v, ok := formValue(values[name])
		if !ok {
			continue
		}
		fields = append(fields, FormField{Name: name, Value: v})
	}
	return fields
}

// EncodeForm renders fields as application/x-www-form-urlencoded, keeping order.
func EncodeForm(fields []FormField) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

func formValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		if val {
			return "1", true
		}
		return "0", true
	case int:
		return strconv.Itoa(val), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	default:
		return fmt.Sprint(val), true
	}
}
