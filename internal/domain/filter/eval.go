package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compare orders two scalar values of the same kind. Supported kinds are
// integers, floats, strings, bools, time.Time, uuid.UUID and decimal.Decimal.
func Compare(a, b any) (int, error) {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, mismatch(a, b)
		}
		return av.Compare(bv), nil
	case uuid.UUID:
		bv, ok := b.(uuid.UUID)
		if !ok {
			return 0, mismatch(a, b)
		}
		return strings.Compare(string(av[:]), string(bv[:])), nil
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		if !ok {
			return 0, mismatch(a, b)
		}
		return av.Cmp(bv), nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, mismatch(a, b)
		}
		return strings.Compare(av, bv), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, mismatch(a, b)
		}
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(ra) && isInt(rb):
		return cmpOrdered(ra.Int(), rb.Int()), nil
	case isNumber(ra) && isNumber(rb):
		return cmpOrdered(asFloat(ra), asFloat(rb)), nil
	}
	return 0, mismatch(a, b)
}

// Match evaluates item against the value of its field.
func Match(item Item, value any) (bool, error) {
	switch item.Operator {
	case IsNull:
		return isNil(value), nil
	case IsNotNull:
		return !isNil(value), nil
	case InList, NotInList:
		found, err := contains(item.Value, value)
		if err != nil {
			return false, err
		}
		return found == (item.Operator == InList), nil
	case Contains, NotContains:
		s, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("filter %s: %T is not a string", item.Field, value)
		}
		hit := strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(item.Value)))
		return hit == (item.Operator == Contains), nil
	}

	c, err := Compare(value, item.Value)
	if err != nil {
		return false, fmt.Errorf("filter %s: %w", item.Field, err)
	}
	switch item.Operator {
	case Equal:
		return c == 0, nil
	case NotEqual:
		return c != 0, nil
	case Less:
		return c < 0, nil
	case LessOrEqual:
		return c <= 0, nil
	case Greater:
		return c > 0, nil
	case GreaterOrEqual:
		return c >= 0, nil
	}
	return false, fmt.Errorf("filter %s: unsupported operator %q", item.Field, item.Operator)
}

// MatchAll evaluates every item against row, which maps field names to
// values. A field missing from row is treated as NULL.
func MatchAll(items []Item, row map[string]any) (bool, error) {
	for _, it := range items {
		ok, err := Match(it, row[it.Field])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func contains(list, value any) (bool, error) {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, fmt.Errorf("in-list value must be a slice, got %T", list)
	}
	for i := 0; i < rv.Len(); i++ {
		c, err := Compare(value, rv.Index(i).Interface())
		if err != nil {
			return false, err
		}
		if c == 0 {
			return true, nil
		}
	}
	return false, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func asFloat(v reflect.Value) float64 {
	if isInt(v) {
		return float64(v.Int())
	}
	return v.Float()
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func mismatch(a, b any) error {
	return fmt.Errorf("cannot compare %T with %T", a, b)
}
