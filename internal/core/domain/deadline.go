package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// deadlineLayouts are the accepted textual timestamp forms, tried in order.
// Naive timestamps (no zone) are interpreted as UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline attempts to interpret a stored deadline string. The second
// return value is false when the string matches no accepted layout; that is
// a normal outcome, not an error.
func ParseDeadline(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Deadline is a loosely-typed stored timestamp: either a well-formed instant
// or an opaque raw value that could not be interpreted. Stored task deadlines
// are heterogeneous (BSON datetimes and ISO-8601 strings with or without a
// trailing UTC marker), so decoding never fails; it degrades to Raw.
type Deadline struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// NewDeadline returns a well-formed deadline for t.
func NewDeadline(t time.Time) Deadline {
	return Deadline{Time: t.UTC(), Valid: true}
}

// DeadlineFrom interprets a textual deadline, keeping the raw value when it
// cannot be parsed.
func DeadlineFrom(raw string) Deadline {
	if t, ok := ParseDeadline(raw); ok {
		return Deadline{Time: t, Raw: raw, Valid: true}
	}
	return Deadline{Raw: raw}
}

// Before reports whether the deadline is well-formed and strictly before t.
// Malformed deadlines are never "before" anything.
func (d Deadline) Before(t time.Time) bool {
	return d.Valid && d.Time.Before(t)
}

func (d Deadline) String() string {
	if d.Valid {
		return d.Time.Format(time.RFC3339)
	}
	return d.Raw
}

// MarshalJSON renders a well-formed deadline as RFC3339 and a malformed one
// as its original raw text.
func (d Deadline) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = DeadlineFrom(s)
	return nil
}

// MarshalBSONValue persists a well-formed deadline as a BSON datetime and a
// malformed one verbatim as a string.
func (d Deadline) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.Valid {
		return bson.TypeDateTime, bsoncore.AppendDateTime(nil, d.Time.UnixMilli()), nil
	}
	return bson.TypeString, bsoncore.AppendString(nil, d.Raw), nil
}

// UnmarshalBSONValue accepts datetimes, strings, and null. Unrecognized
// string contents are retained as Raw rather than rejected.
func (d *Deadline) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeDateTime:
		ms, _, ok := bsoncore.ReadDateTime(data)
		if !ok {
			return fmt.Errorf("deadline: corrupt datetime value")
		}
		*d = Deadline{Time: time.UnixMilli(ms).UTC(), Valid: true}
		return nil
	case bson.TypeString:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("deadline: corrupt string value")
		}
		*d = DeadlineFrom(s)
		return nil
	case bson.TypeNull:
		*d = Deadline{}
		return nil
	default:
		return fmt.Errorf("deadline: unsupported bson type %s", t)
	}
}
