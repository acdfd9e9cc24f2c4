package util

import (
	"encoding/json"
	"fmt"
	"math"
)

// ToInt coerces v to an int. Floats are accepted only when integral.
func ToInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int64ToInt(n)
	case uint32:
		return int64ToInt(int64(n))
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n.String())
		}
		return floatToInt(f)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("expected an integer, got %v", f)
	}
	// -MinInt is a power of two, so it converts to float64 exactly.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int(f), nil
}

func int64ToInt(n int64) (int, error) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return int(n), nil
}

// ToFloat coerces v to a float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// ToBool coerces v to a bool. Only real booleans are accepted.
func ToBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

// ToString coerces v to a string. Only real strings are accepted.
func ToString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

// ToFloat32Slice converts v into a newly allocated []float32. The result never
// aliases v, so callers may keep mutating their own buffer.
func ToFloat32Slice(v any) ([]float32, error) {
	switch s := v.(type) {
	case nil:
		return []float32{}, nil
	case []float32:
		out := make([]float32, len(s))
		copy(out, s)
		return out, nil
	case []float64:
		out := make([]float32, len(s))
		for i, f := range s {
			out[i] = float32(f)
		}
		return out, nil
	case []any:
		out := make([]float32, len(s))
		for i, e := range s {
			f, err := ToFloat(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an array of numbers, got %T", v)
	}
}
