package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimeLayout is the wall-clock format of SearchRecord.SavedAt (dd-MM-yyyy HH:mm:ss).
const TimeLayout = "02-01-2006 15:04:05"

// ErrMalformedRecord is reported when a stored value cannot be decoded.
// The decoded record is still usable: unreadable fields are left empty.
var ErrMalformedRecord = errors.New("malformed search record")

// SearchRecord is the latest query saved under a tag.
type SearchRecord struct {
	// Query is the raw user text. It may contain characters that
	// need percent-encoding before it ends up in a URL.
	Query string `json:"query"`

	// SavedAt is the local time of the last create/update,
	// formatted with TimeLayout.
	SavedAt string `json:"time"`
}

// NewSearchRecord stamps query with now.
func NewSearchRecord(query string, now time.Time) SearchRecord {
	return SearchRecord{
		Query:   query,
		SavedAt: now.Local().Format(TimeLayout),
	}
}

// SavedTime parses SavedAt back into a local time.
func (r SearchRecord) SavedTime() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, r.SavedAt, time.Local)
}

// IsZero reports whether neither field is set.
func (r SearchRecord) IsZero() bool {
	return r.Query == "" && r.SavedAt == ""
}

// EncodeRecord serializes a record to its stored form: {"query": ..., "time": ...}.
func EncodeRecord(r SearchRecord) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search record: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a stored value. It never fails hard: missing keys
// or unparseable data produce empty fields, and the returned error only
// tells the caller something was wrong so it can be logged.
func DecodeRecord(raw []byte) (SearchRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return SearchRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var (
		rec     SearchRecord
		missing []string
	)
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"query", &rec.Query},
		{"time", &rec.SavedAt},
	} {
		v, ok := fields[f.key]
		if !ok {
			missing = append(missing, f.key)
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			*f.dst = ""
			missing = append(missing, f.key)
		}
	}

	if len(missing) > 0 {
		return rec, fmt.Errorf("%w: missing or invalid %v", ErrMalformedRecord, missing)
	}
	return rec, nil
}
