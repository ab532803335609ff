package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PhoneNumbers is an ordered list persisted as a JSON array (jsonb on Postgres, text on sqlite).
type PhoneNumbers []string

func (p *PhoneNumbers) Scan(src any) error {
	if src == nil {
		*p = PhoneNumbers{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("PhoneNumbers: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*p = PhoneNumbers{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("PhoneNumbers: decode: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*p = out
	return nil
}

func (p PhoneNumbers) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
