package binding

import (
	"reflect"
	"strconv"
	"strings"
)

// candidate is one target of the coercion checklist.
type candidate struct {
	typ   reflect.Type
	parse func(string) (any, bool)
}

// candidates is checked in order; the first type assignable to the declared
// parameter type wins. string comes first, so interface types such as any
// always receive the raw text.
var candidates = []candidate{
	{reflect.TypeFor[string](), func(s string) (any, bool) { return s, true }},
	{reflect.TypeFor[bool](), func(s string) (any, bool) { return strings.EqualFold(s, "true"), true }},
	{reflect.TypeFor[int8](), func(s string) (any, bool) {
		v, err := strconv.ParseInt(s, 10, 8)
		return int8(v), err == nil
	}},
	{reflect.TypeFor[int16](), func(s string) (any, bool) {
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err == nil
	}},
	{reflect.TypeFor[int32](), func(s string) (any, bool) {
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err == nil
	}},
	{reflect.TypeFor[int64](), func(s string) (any, bool) {
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}},
	{reflect.TypeFor[int](), func(s string) (any, bool) {
		v, err := strconv.Atoi(s)
		return v, err == nil
	}},
	{reflect.TypeFor[float32](), func(s string) (any, bool) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		return float32(v), err == nil
	}},
	{reflect.TypeFor[float64](), func(s string) (any, bool) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return v, err == nil
	}},
}

// coerceAssignable converts raw using the first candidate type assignable to
// target. It returns nil for absent values, unsupported targets and
// unparseable text.
func coerceAssignable(target reflect.Type, raw Raw) any {
	if !raw.Valid || target == nil {
		return nil
	}

	for _, c := range candidates {
		if !c.typ.AssignableTo(target) {
			continue
		}
		v, ok := c.parse(raw.Value)
		if !ok {
			return nil
		}
		return v
	}

	return nil
}

// coerceExact converts raw by the kind of target, so named types such as
// `type Count int` and unsigned kinds are supported. Interface targets
// receive the raw text.
func coerceExact(target reflect.Type, raw Raw) any {
	if !raw.Valid || target == nil {
		return nil
	}

	var value reflect.Value
	switch target.Kind() {
	case reflect.String:
		value = reflect.ValueOf(raw.Value)

	case reflect.Bool:
		v, err := strconv.ParseBool(raw.Value)
		if err != nil {
			return nil
		}
		value = reflect.ValueOf(v)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw.Value, 10, target.Bits())
		if err != nil {
			return nil
		}
		value = reflect.ValueOf(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw.Value, 10, target.Bits())
		if err != nil {
			return nil
		}
		value = reflect.ValueOf(v)

	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw.Value), target.Bits())
		if err != nil {
			return nil
		}
		value = reflect.ValueOf(v)

	case reflect.Interface:
		if reflect.TypeFor[string]().AssignableTo(target) {
			return raw.Value
		}
		return nil

	default:
		return nil
	}

	return value.Convert(target).Interface()
}
