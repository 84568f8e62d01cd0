package riotwave

import (
	"reflect"
)

// With is a phantom field that restricts a handler or loop to actors carrying
// component T. Nothing is injected into it.
//
// Usage:
//
//	type ChaseLoop struct {
//	    _ riotwave.With[Brain]
//	}
type With[T any] struct{}

// Without is a phantom field that skips actors carrying component T.
//
// Usage:
//
//	type FireHandler struct {
//	    _ riotwave.Without[Disabled]
//	}
type Without[T any] struct{}

// PhantomTypeInfo provides component type information for phantom types.
type PhantomTypeInfo interface {
	ComponentType() reflect.Type
	IsWithout() bool
}

// ComponentType implements PhantomTypeInfo for With[T].
func (With[T]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsWithout implements PhantomTypeInfo for With[T].
func (With[T]) IsWithout() bool {
	return false
}

// ComponentType implements PhantomTypeInfo for Without[T].
func (Without[T]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsWithout implements PhantomTypeInfo for Without[T].
func (Without[T]) IsWithout() bool {
	return true
}

var phantomTypeInfoType = reflect.TypeOf((*PhantomTypeInfo)(nil)).Elem()

// filter is the require/exclude mask computed from a system's phantom fields.
type filter struct {
	require Bitmask
	exclude Bitmask
}

// analyzeFilter scans the struct behind sys for With/Without fields.
func analyzeFilter(sys any) filter {
	var f filter
	t := reflect.TypeOf(sys)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return f
	}

	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i).Type
		if !ft.Implements(phantomTypeInfoType) {
			continue
		}
		info := reflect.New(ft).Elem().Interface().(PhantomTypeInfo)
		id := registerComponentType(info.ComponentType())
		if info.IsWithout() {
			f.exclude.Set(id)
		} else {
			f.require.Set(id)
		}
	}
	return f
}
