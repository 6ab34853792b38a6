package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// SetSchema is one generated set before coercion. The generator emits either
// a positional array [weight, reps, duration, distance, rest_time], right-
// padded with null when shorter, or an object with the same fields named.
// Values stay untyped until setFromSchema coerces them.
type SetSchema struct {
	Weight   any
	Reps     any
	Duration any
	Distance any
	RestTime any
}

func (s *SetSchema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.UseNumber()
		var values []any
		if err := decoder.Decode(&values); err != nil {
			return fmt.Errorf("decode set array: %w", err)
		}
		for len(values) < 5 {
			values = append(values, nil)
		}
		s.Weight = values[0]
		s.Reps = values[1]
		s.Duration = values[2]
		s.Distance = values[3]
		s.RestTime = values[4]
		return nil
	}

	var fields struct {
		Weight   any `json:"weight"`
		Reps     any `json:"reps"`
		Duration any `json:"duration"`
		Distance any `json:"distance"`
		RestTime any `json:"rest_time"`
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil {
		return fmt.Errorf("decode set object: %w", err)
	}
	s.Weight = fields.Weight
	s.Reps = fields.Reps
	s.Duration = fields.Duration
	s.Distance = fields.Distance
	s.RestTime = fields.RestTime
	return nil
}

// MarshalJSON round-trips the positional array form.
func (s SetSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Weight, s.Reps, s.Duration, s.Distance, s.RestTime})
}

// setFromSchema coerces one generated set into typed fields. ok is false when
// every metric resolves absent (the set must not be persisted); a non-nil
// error marks a value that cannot be coerced, which skips this set only.
//
// Both null and numeric zero mean "not provided" on this wire format. That
// makes a deliberate zero (a bodyweight set logged with weight=0) look
// absent; kept as-is for compatibility with the generator contract.
func setFromSchema(raw SetSchema) (Set, bool, error) {
	weight, err := floatMetric("weight", raw.Weight)
	if err != nil {
		return Set{}, false, err
	}
	reps, err := intMetric("reps", raw.Reps)
	if err != nil {
		return Set{}, false, err
	}
	duration, err := intMetric("duration", raw.Duration)
	if err != nil {
		return Set{}, false, err
	}
	distance, err := floatMetric("distance", raw.Distance)
	if err != nil {
		return Set{}, false, err
	}
	rest, err := intMetric("rest_time", raw.RestTime)
	if err != nil {
		return Set{}, false, err
	}

	if weight == nil && reps == nil && duration == nil && distance == nil && rest == nil {
		return Set{}, false, nil
	}
	return Set{
		Weight:   weight,
		Reps:     reps,
		Duration: duration,
		Distance: distance,
		RestTime: rest,
		Status:   SetStatusOpen,
	}, true, nil
}

// floatMetric coerces strictly: only JSON numbers are accepted, numeric
// strings are not.
func floatMetric(field string, value any) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", field, v.String())
		}
		if f == 0 {
			return nil, nil
		}
		return &f, nil
	case float64:
		if v == 0 {
			return nil, nil
		}
		return &v, nil
	case int:
		if v == 0 {
			return nil, nil
		}
		f := float64(v)
		return &f, nil
	default:
		return nil, fmt.Errorf("%s: %T is not a number", field, value)
	}
}

// intMetric accepts integral numbers only; 5.5 reps is a coercion failure.
func intMetric(field string, value any) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", field, v.String())
		}
		return wholeNumber(field, f)
	case float64:
		return wholeNumber(field, v)
	case int:
		if v == 0 {
			return nil, nil
		}
		n := v
		return &n, nil
	default:
		return nil, fmt.Errorf("%s: %T is not a number", field, value)
	}
}

func wholeNumber(field string, f float64) (*int, error) {
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%s: %v is not a whole number", field, f)
	}
	if f == 0 {
		return nil, nil
	}
	n := int(f)
	return &n, nil
}
