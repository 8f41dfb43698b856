package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExternalID is an identifier as reported by the external catalog.
// The catalog does not promise numeric ids, so the raw value is kept and parsed on demand.
type ExternalID string

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid external id %s: %w", data, err)
		}
		*id = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid external id %s: %w", data, err)
	}
	*id = ExternalID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ExternalID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// Int64 returns the id as a positive integer. ok is false for anything else.
func (id ExternalID) Int64() (n int64, ok bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ExternalItem is a raw product record from the external catalog.
type ExternalItem struct {
	ID          ExternalID `json:"id"`
	Title       string     `json:"title"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	Rating      Rating     `json:"rating"`
}

// Rating is the external catalog's rating summary. It is decoded but not used for reconciliation.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}
