package binder

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Query fills the `query` tagged fields of the struct pointed to by v.
// Untagged fields and fields tagged "-" are skipped. Absent parameters
// leave the field untouched.
func Query(r *http.Request, v any) error {
	return bindValues(r.URL.Query(), v)
}

func bindValues(values url.Values, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a non-nil struct pointer", ErrInvalidQuery)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("query"), ",")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		raw := split(values[name])
		if len(raw) == 0 {
			continue
		}
		if err := set(rv.Field(i), raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidQuery, name, err)
		}
	}
	return nil
}

func split(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func set(field reflect.Value, raw []string) error {
	switch {
	case field.Kind() == reflect.Pointer:
		elem := reflect.New(field.Type().Elem())
		if err := set(elem.Elem(), raw); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	case field.Type() == timeType:
		t, err := time.Parse(time.RFC3339, raw[0])
		if err != nil {
			return fmt.Errorf("invalid time %q", raw[0])
		}
		field.Set(reflect.ValueOf(t))
		return nil
	case field.Kind() == reflect.Slice:
		slice := reflect.MakeSlice(field.Type(), len(raw), len(raw))
		for i, s := range raw {
			if err := set(slice.Index(i), []string{s}); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	s := raw[0]
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", s)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
