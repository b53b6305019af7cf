package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// JSONValue stores an arbitrary JSON document in a jsonb column.
type JSONValue []byte

func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		*v = append((*v)[:0], data...)
		return nil
	case string:
		*v = JSONValue(data)
		return nil
	default:
		return fmt.Errorf("failed to scan JSONValue: %v", value)
	}
}

func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return "null", nil
	}
	return string(v), nil
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	if v == nil {
		return errors.New("JSONValue: UnmarshalJSON on nil pointer")
	}
	*v = append((*v)[:0], data...)
	return nil
}

// Setting is a key/value row for store-level configuration.
type Setting struct {
	BaseModel
	Key   string    `gorm:"uniqueIndex;not null" json:"key"`
	Value JSONValue `gorm:"type:jsonb" json:"value"`
}
