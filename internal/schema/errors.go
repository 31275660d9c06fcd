package schema

import (
	"fmt"
	"strings"
)

// SchemaMismatchError is returned in strict mode when the sheet header differs
// from the declared columns.
type SchemaMismatchError struct {
	Table   string
	Missing []string
	Extra   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("header mismatch for table %s: missing [%s] | extra [%s]",
		e.Table, strings.Join(e.Missing, ", "), strings.Join(e.Extra, ", "))
}

// InvalidValueError is returned when a numeric cell cannot be parsed.
type InvalidValueError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("table %s row %d: invalid number %q in column %s", e.Table, e.Row, e.Value, e.Column)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}
