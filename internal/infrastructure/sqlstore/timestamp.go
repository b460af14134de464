package sqlstore

import (
	"fmt"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
)

// SQLite hands timestamps back as text whenever it cannot see the declared
// column type (RETURNING clauses included), so both shapes are accepted.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return domain.NewValidationError(fmt.Sprintf("unsupported created_at type %T", src))
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return domain.NewValidationError(fmt.Sprintf("cannot parse created_at %q", s))
}
