package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the SQL flavour of the underlying database.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// sqliteTimeLayout is fixed width and always UTC so stored timestamps
// compare correctly as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000-07:00"

var columnTypes = map[Dialect]*strings.Replacer{
	Postgres: strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{ts}}", "TIMESTAMPTZ",
		"{{date}}", "DATE",
	),
	SQLite: strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ts}}", "DATETIME",
		"{{date}}", "DATE",
	),
}

// rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate is the row-lock suffix for SELECTs inside a transaction.
// SQLite locks the whole database on write instead.
func (d Dialect) forUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// timeArg converts t into a query argument.
func (d Dialect) timeArg(t time.Time) any {
	if d == SQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

func (d Dialect) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.timeArg(*t)
}

// scanTime reads timestamps whether the driver hands back time.Time or
// text.
type scanTime struct {
	dst *time.Time
}

func (s *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		*s.dst = v
	case string:
		t, err := parseTime(v)
		if err != nil {
			return err
		}
		*s.dst = t
	case []byte:
		t, err := parseTime(string(v))
		if err != nil {
			return err
		}
		*s.dst = t
	default:
		return fmt.Errorf("sqlstore: cannot scan %T into time", src)
	}
	return nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("sqlstore: unrecognised time %q", s)
}

func timeCol(t *time.Time) *scanTime { return &scanTime{dst: t} }

// nullTimeCol scans a nullable timestamp into *dst, leaving it nil for
// NULL.
type nullTimeCol struct{ dst **time.Time }

func (n nullTimeCol) Scan(src any) error {
	if src == nil {
		*n.dst = nil
		return nil
	}
	var t time.Time
	if err := timeCol(&t).Scan(src); err != nil {
		return err
	}
	*n.dst = &t
	return nil
}

// dateArg stores a calendar date as midnight UTC.
func (d Dialect) dateArg(t time.Time) any {
	y, m, day := t.Date()
	u := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	if d == SQLite {
		return u.Format("2006-01-02")
	}
	return u
}
