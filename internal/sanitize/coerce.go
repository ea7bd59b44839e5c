package sanitize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/roach88/schemata/internal/ir"
)

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
}

// coerceScalar applies the documented coercions for a scalar type.
func coerceScalar(t ir.Type, raw any) (any, error) {
	switch t {
	case ir.TypeString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case ir.IRString:
			return string(v), nil
		}
	case ir.TypeInt:
		return toInt(raw)
	case ir.TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case ir.IRBool:
			return bool(v), nil
		}
	case ir.TypeDate:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			return parseDate(v)
		case ir.IRString:
			return parseDate(string(v))
		}
	case ir.TypeData:
		switch v := raw.(type) {
		case []byte:
			return bytes.Clone(v), nil
		case string:
			return decodeData(v)
		case ir.IRString:
			return decodeData(string(v))
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", raw, t)
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case ir.IRInt:
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s is not an int64", v)
		}
		return n, nil
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	}
	return 0, fmt.Errorf("cannot use %T as int", raw)
}

func integral(f float64) (int64, error) {
	n, ok := ir.IntegralFloat(f)
	if !ok {
		return 0, fmt.Errorf("%v is not an integral int64 value", f)
	}
	return n, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an RFC 3339 date", s)
}

func decodeData(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("data string is not base64: %v", err)
	}
	return b, nil
}
