package equal

import (
	"math"
	"reflect"
	"unsafe"
)

// Func compares two values.
type Func func(a, b any) bool

// Is reports whether a and b are identical.
func Is(a, b any) bool {
	return is(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Shallow reports whether a and b are identical, or are containers of the
// same type whose elements are pairwise identical.
func Shallow(a, b any) bool {
	c := &comparer{elem: is}
	return c.compare(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Deep reports whether a and b are structurally equal at every level.
// Cyclic values are compared without looping.
func Deep(a, b any) bool {
	c := &comparer{}
	c.elem = c.compare
	return c.compare(reflect.ValueOf(a), reflect.ValueOf(b))
}

// visit is a pair of references already under comparison.
type visit struct {
	a, b unsafe.Pointer
	n    int
	typ  reflect.Type
}

// comparer holds the algorithm shared by Shallow and Deep. elem decides
// equality for the elements of a container.
type comparer struct {
	elem func(x, y reflect.Value) bool
	seen map[visit]bool
}

func (c *comparer) compare(a, b reflect.Value) bool {
	if is(a, b) {
		return true
	}

	a, b = unwrap(a), unwrap(b)
	if !a.IsValid() || !b.IsValid() || a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		pa, pb := a.UnsafePointer(), b.UnsafePointer()
		if pa != nil && pb != nil {
			v := visit{a: pa, b: pb, typ: a.Type()}
			if a.Kind() == reflect.Slice {
				v.n = a.Len()
			}
			// A pair met again is still being compared further up.
			if c.seen[v] {
				return true
			}
			if c.seen == nil {
				c.seen = make(map[visit]bool)
			}
			c.seen[v] = true
		}
	}

	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		if a.Kind() == reflect.Array {
			a, b = addressable(a), addressable(b)
		}
		for i := 0; i < a.Len(); i++ {
			if !c.elem(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true

	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !c.elem(iter.Value(), bv) {
				return false
			}
		}
		return true

	case reflect.Struct:
		a, b = addressable(a), addressable(b)
		for i := 0; i < a.NumField(); i++ {
			if !c.elem(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true

	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return false
		}
		return c.compare(a.Elem(), b.Elem())
	}

	return false
}

func is(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return sameFloat(a.Float(), b.Float())
	case reflect.Complex64, reflect.Complex128:
		x, y := a.Complex(), b.Complex()
		return sameFloat(real(x), real(y)) && sameFloat(imag(x), imag(y))
	case reflect.String:
		return a.String() == b.String()
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		x, okx := funcIdentity(a)
		y, oky := funcIdentity(b)
		return okx && oky && x == y
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return is(a.Elem(), b.Elem())
	case reflect.Array:
		a, b = addressable(a), addressable(b)
		for i := 0; i < a.Len(); i++ {
			if !is(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		a, b = addressable(a), addressable(b)
		for i := 0; i < a.NumField(); i++ {
			if !is(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}

// funcIdentity returns the closure a func value refers to. Pointer only
// reports the code address, which every closure created by the same
// function literal shares. The boolean is false when the value can be
// neither addressed nor converted to an interface.
func funcIdentity(v reflect.Value) (unsafe.Pointer, bool) {
	switch {
	case v.IsNil():
		return nil, true
	case v.CanAddr():
		return *(*unsafe.Pointer)(unsafe.Pointer(v.UnsafeAddr())), true
	case v.CanInterface():
		i := v.Interface()
		return (*[2]unsafe.Pointer)(unsafe.Pointer(&i))[1], true
	}
	return nil, false
}

// addressable copies v into fresh storage when it cannot be addressed, so
// that func fields below it can be identified.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() || !v.CanInterface() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// sameFloat follows Object.is semantics.
func sameFloat(x, y float64) bool {
	if math.IsNaN(x) && math.IsNaN(y) {
		return true
	}
	if x == 0 && y == 0 {
		return math.Signbit(x) == math.Signbit(y)
	}
	return x == y
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// Slices reports whether two dependency lists have the same length and
// pairwise identical elements.
func Slices(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Is(a[i], b[i]) {
			return false
		}
	}
	return true
}
