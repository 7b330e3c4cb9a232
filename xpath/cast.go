package xpath

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v2"
)

var decimalContext = apd.BaseContext.WithPrecision(34)

// CastValue converts an atomic value to the target type following the
// cast-as rules. A failed conversion is a dynamic error carrying the
// attempted target type.
func CastValue(value any, target *AtomicType) (Item, error) {
	switch target {
	case TypeString:
		str, err := toString(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewString(str), nil
	case TypeUntypedAtomic:
		str, err := toString(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewUntyped(str), nil
	case TypeBoolean:
		ok, err := toBool(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewBoolean(ok), nil
	case TypeDouble:
		val, err := toFloat(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewDouble(val), nil
	case TypeFloat:
		val, err := toFloat(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewFloat(float32(val)), nil
	case TypeDecimal:
		dec, err := toDecimal(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewDecimal(dec), nil
	case TypeInteger:
		val, err := toInt(value)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewInteger(val), nil
	case TypeDate:
		when, err := toTime(value, "2006-01-02")
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewDate(when), nil
	case TypeDateTime:
		when, err := toTime(value, time.RFC3339)
		if err != nil {
			return nil, conversionError(value, target)
		}
		return NewDateTime(when), nil
	default:
		return nil, dynamicErrorf(CodeCast, "%s: type does not support casting", target)
	}
}

// CastItem atomizes the item and converts it to the target type.
func CastItem(item Item, target *AtomicType) (Item, error) {
	return CastValue(atomize(item).Value(), target)
}

func Castable(value any, target *AtomicType) bool {
	_, err := CastValue(value, target)
	return err == nil
}

func toString(value any) (string, error) {
	switch value := value.(type) {
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case int64:
		return strconv.FormatInt(value, 10), nil
	case float64:
		return formatDouble(value), nil
	case float32:
		return formatDouble(float64(value)), nil
	case *apd.Decimal:
		return value.String(), nil
	case time.Time:
		return value.Format(time.RFC3339), nil
	default:
		return "", ErrCast
	}
}

func toBool(value any) (bool, error) {
	switch value := value.(type) {
	case bool:
		return value, nil
	case string:
		switch strings.TrimSpace(value) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return false, ErrCast
		}
	case int64:
		return value != 0, nil
	case float64:
		return value != 0 && !math.IsNaN(value), nil
	case float32:
		return value != 0 && !math.IsNaN(float64(value)), nil
	case *apd.Decimal:
		return value.Sign() != 0, nil
	default:
		return false, ErrCast
	}
}

func toFloat(value any) (float64, error) {
	switch value := value.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case *apd.Decimal:
		val, err := value.Float64()
		if err != nil {
			return 0, ErrCast
		}
		return val, nil
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case string:
		str := strings.TrimSpace(value)
		switch str {
		case "INF":
			return math.Inf(1), nil
		case "-INF":
			return math.Inf(-1), nil
		case "NaN":
			return math.NaN(), nil
		}
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, ErrCast
		}
		return val, nil
	default:
		return 0, ErrCast
	}
}

func toInt(value any) (int64, error) {
	switch value := value.(type) {
	case int64:
		return value, nil
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, ErrCast
		}
		return int64(value), nil
	case float32:
		return toInt(float64(value))
	case *apd.Decimal:
		var trunc apd.Decimal
		if _, err := decimalContext.Floor(&trunc, value); err != nil {
			return 0, ErrCast
		}
		val, err := trunc.Int64()
		if err != nil {
			return 0, ErrCast
		}
		return val, nil
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	case string:
		val, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, ErrCast
		}
		return val, nil
	default:
		return 0, ErrCast
	}
}

func toDecimal(value any) (*apd.Decimal, error) {
	switch value := value.(type) {
	case *apd.Decimal:
		return value, nil
	case int64:
		return apd.New(value, 0), nil
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, ErrCast
		}
		var dec apd.Decimal
		if _, err := dec.SetFloat64(value); err != nil {
			return nil, ErrCast
		}
		return &dec, nil
	case float32:
		return toDecimal(float64(value))
	case string:
		dec, _, err := apd.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, ErrCast
		}
		return dec, nil
	case bool:
		if value {
			return apd.New(1, 0), nil
		}
		return apd.New(0, 0), nil
	default:
		return nil, ErrCast
	}
}

func toTime(value any, layout string) (time.Time, error) {
	switch value := value.(type) {
	case time.Time:
		return value, nil
	case string:
		when, err := time.Parse(layout, strings.TrimSpace(value))
		if err != nil {
			return time.Time{}, ErrCast
		}
		return when, nil
	default:
		return time.Time{}, ErrCast
	}
}
