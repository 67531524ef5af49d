package helpers

import "reflect"

// StrPanic returns p, or panics with panicMessage when p is "". Blank strings pass.
// Constructors use it for required names and URLs (namespace, login URL, server list URL).
func StrPanic(p string, panicMessage string) string {
	if p == "" {
		panic(panicMessage)
	}
	return p
}

// NilPanic returns v, or panics with panicMessage when v is nil. A typed nil also counts: a nil pointer
// stored in an interface, and a nil map, slice, chan or func. An empty map or slice passes.
//
// Every constructor in service and adapters checks its dependencies with it.
func NilPanic[T any](v T, panicMessage string) T {
	if isNil(v) {
		panic(panicMessage)
	}
	return v
}

// nilable lists the kinds for which reflect.Value.IsNil is defined.
var nilable = map[reflect.Kind]bool{
	reflect.Pointer:   true,
	reflect.Map:       true,
	reflect.Slice:     true,
	reflect.Chan:      true,
	reflect.Func:      true,
	reflect.Interface: true,
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return nilable[rv.Kind()] && rv.IsNil()
}
