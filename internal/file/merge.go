package file

import (
	"reflect"
)

// Merge overlays override on base field by field; zero fields of override
// keep the base value. Used to apply command-line flags on top of a loaded
// configuration.
func Merge[T any](base T, override T) T {
	var out T
	overlay(reflect.TypeOf((*T)(nil)).Elem(), reflect.ValueOf(base), reflect.ValueOf(override), reflect.ValueOf(&out).Elem())
	return out
}

func overlay(t reflect.Type, base, override, out reflect.Value) {
	switch t.Kind() {
	case reflect.Struct:
		for _, f := range reflect.VisibleFields(t) {
			overlay(f.Type, base.FieldByIndex(f.Index), override.FieldByIndex(f.Index), out.FieldByIndex(f.Index))
		}
	case reflect.Pointer:
		switch {
		case base.IsNil():
			out.Set(override)
		case override.IsNil():
			out.Set(base)
		default:
			out.Set(reflect.New(t.Elem()))
			overlay(t.Elem(), base.Elem(), override.Elem(), out.Elem())
		}
	default:
		if override.IsZero() {
			out.Set(base)
		} else {
			out.Set(override)
		}
	}
}
