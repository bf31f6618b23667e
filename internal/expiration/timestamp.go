package expiration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// expiryLayouts are the string layouts accepted for expiryDate values that
// were persisted as ISO-formatted text by older front-end versions.
var expiryLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ResolveExpiry normalizes the polymorphic expiryDate representations found
// in the collection: a BSON datetime, a native time value, or an ISO string.
// A value that resolves to none of these is reported as unresolvable, which
// callers treat as "does not expire" rather than as an error.
func ResolveExpiry(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case primitive.DateTime:
		return t.Time(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0), true
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range expiryLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
