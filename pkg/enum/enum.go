package enum

import (
	"fmt"
	"reflect"
	"sort"
)

var enumManager = map[string]any{}

type enum[T comparable] struct {
	toEnum map[string]T
}

// New registers a value of a string-based enum type. Declare enum values as
// package variables with New so ToEnum can parse them later.
func New[T comparable](value T) T {
	v := reflect.ValueOf(value)
	name := v.Type().Name()
	if _, ok := enumManager[name]; !ok {
		enumManager[name] = enum[T]{toEnum: make(map[string]T)}
	}

	enumManager[name].(enum[T]).toEnum[v.String()] = value
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT).Name()]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.(enum[T]).toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// ToList returns every registered value of the enum type in a stable order.
func ToList[T comparable]() []T {
	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT).Name()]
	if !ok {
		return nil
	}

	toEnum := e.(enum[T]).toEnum
	keys := make([]string, 0, len(toEnum))
	for k := range toEnum {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]T, 0, len(keys))
	for _, k := range keys {
		values = append(values, toEnum[k])
	}

	return values
}
