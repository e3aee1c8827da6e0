package funcrt

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/hanpama/gqlhello/internal/schema"
)

func serializeString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v", v)
}

func serializeInt(v any) (any, error) {
	var f float64
	switch x := v.(type) {
	case bool:
		if x {
			return int32(1), nil
		}
		return int32(0), nil
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %q", x)
		}
		f = parsed
	default:
		n, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		f = n
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
	}
	return int32(f), nil
}

func serializeFloat(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return float64(1), nil
		}
		return float64(0), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %q", x)
		}
		return f, nil
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %v", v)
	}
	return f, nil
}

func serializeBoolean(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if f, ok := toFloat(v); ok {
		return f != 0, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", v)
}

func serializeID(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	if f, ok := toFloat(v); ok && f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v", v)
}

func serializeEnum(t *schema.Type, v any) (any, error) {
	var name string
	switch x := v.(type) {
	case string:
		name = x
	case fmt.Stringer:
		name = x.String()
	default:
		return nil, fmt.Errorf("Enum %q cannot represent value: %v", t.Name, v)
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("Enum %q cannot represent value: %q", t.Name, name)
}

// toFloat accepts any Go integer or float kind, including named types.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
