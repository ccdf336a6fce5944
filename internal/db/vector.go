package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector is an embedding stored as a JSON array in a TEXT column.
type Vector []float64

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]float64(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vector: %w", err)
	}
	return string(b), nil
}

func (v *Vector) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	var out []float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to unmarshal vector: %w", err)
	}
	*v = out
	return nil
}
