package bracket

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchIDs is an ordered list of match references stored as a JSON array.
type MatchIDs []uuid.UUID

func (ids MatchIDs) Value() (driver.Value, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]uuid.UUID(ids))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ids *MatchIDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*ids = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into MatchIDs", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*ids = nil
		return nil
	}
	var out []uuid.UUID
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode match ids: %w", err)
	}
	*ids = out
	return nil
}

// Score is a nullable decimal that reads malformed stored values as absent.
type Score struct {
	decimal.NullDecimal
}

func NewScore(d decimal.Decimal) Score {
	return Score{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// OrZero returns the score value, or zero when the score is absent.
func (s Score) OrZero() decimal.Decimal {
	if !s.Valid {
		return decimal.Zero
	}
	return s.Decimal
}

func (s *Score) Scan(src any) error {
	if err := s.NullDecimal.Scan(src); err != nil {
		s.NullDecimal = decimal.NullDecimal{}
	}
	return nil
}

func (s Score) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Decimal.String(), nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return []byte(s.Decimal.String()), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	trimmed := bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		s.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", trimmed, err)
	}
	*s = NewScore(d)
	return nil
}

// ScorePayload is an opaque sport specific JSON document. Invalid stored JSON
// is read back as an empty payload.
type ScorePayload json.RawMessage

func (p ScorePayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

func (p *ScorePayload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	}
	if len(raw) == 0 || !json.Valid(raw) {
		*p = nil
		return nil
	}
	*p = append(ScorePayload(nil), raw...)
	return nil
}

func (p ScorePayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *ScorePayload) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*p = nil
		return nil
	}
	*p = append(ScorePayload(nil), b...)
	return nil
}
