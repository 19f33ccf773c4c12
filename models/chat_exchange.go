package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SourceRefs lists the statute chunks a generated answer was conditioned on
type SourceRefs []SourceRef

// SourceRef identifies one retrieved chunk
type SourceRef struct {
	Act     string  `json:"act"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
}

// Value implements driver.Valuer for JSONB
func (s SourceRefs) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *SourceRefs) Scan(value interface{}) error {
	if value == nil {
		*s = make(SourceRefs, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(SourceRefs, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(SourceRefs, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ChatExchange is an answered legal question recorded for audit
type ChatExchange struct {
	ID        uuid.UUID  `json:"id"`
	SessionID string     `json:"session_id"`
	Category  Category   `json:"category"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Sources   SourceRefs `json:"sources"`
	Fallback  bool       `json:"fallback"` // Generator returned blank text
	CreatedAt time.Time  `json:"created_at"`
}
