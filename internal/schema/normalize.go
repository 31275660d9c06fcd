package schema

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one raw sheet row keyed by header; nil means the cell was empty.
type Row = map[string]*string

// Record is a sanitized row ready for persistence. Values are nil, string or
// decimal.Decimal, and every declared column is present.
type Record = map[string]any

// HeaderAliases maps known misspelled or shorthand headers to canonical names.
// Applied once at ingestion so no read site has to probe alternatives.
var HeaderAliases = map[string]string{
	"scope_of_servie": "scope_of_service",
	"pol":             "pol_aol",
	"aol":             "pol_aol",
	"pod":             "pod_aod",
	"aod":             "pod_aod",
	"container_no":    "container_number",
	"shipment id":     "shipment_id",
}

// NormalizeColumn canonicalizes one header name for table t.
func NormalizeColumn(t Table, name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := HeaderAliases[n]; ok {
		n = alias
	}
	if t.DotToUnderscore {
		n = strings.ReplaceAll(n, ".", "_")
	}
	return n
}

// NormalizeHeader canonicalizes every header name, dropping blanks.
func NormalizeHeader(t Table, header []string) []string {
	out := make([]string, 0, len(header))
	for _, h := range header {
		if n := NormalizeColumn(t, h); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// CheckStrict compares a normalized header with the declared columns.
func CheckStrict(t Table, header []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	want := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		want[c] = struct{}{}
	}

	var missing, extra []string
	for c := range want {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	for h := range have {
		if _, ok := want[h]; !ok {
			extra = append(extra, h)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &SchemaMismatchError{Table: t.Name, Missing: missing, Extra: extra}
}

// NormalizeRow rekeys a raw row by canonical column names. Empty and
// whitespace-only cells become nil.
func NormalizeRow(t Table, raw Row) Row {
	out := make(Row, len(raw))
	for k, v := range raw {
		n := NormalizeColumn(t, k)
		if n == "" {
			continue
		}
		out[n] = nullIfEmpty(v)
	}
	return out
}

// SanitizeRow keeps only declared columns, writes nil for absent ones and
// parses numeric columns. rowNum is used in error messages only.
func SanitizeRow(t Table, row Row, rowNum int) (Record, error) {
	rec := make(Record, len(t.Columns))
	for _, col := range t.Columns {
		v := nullIfEmpty(row[col])
		if v == nil {
			rec[col] = nil
			continue
		}
		if t.isNumeric(col) {
			d, err := ParseNumber(*v)
			if err != nil {
				return nil, &InvalidValueError{Table: t.Name, Column: col, Row: rowNum, Value: *v, Err: err}
			}
			rec[col] = d
			continue
		}
		rec[col] = *v
	}
	return rec, nil
}

// HasRequired reports whether every required key of t holds a value.
func HasRequired(t Table, rec Record) bool {
	for _, k := range t.RequiredKeys {
		v, ok := rec[k]
		if !ok || v == nil {
			return false
		}
		if s, isStr := v.(string); isStr && s == "" {
			return false
		}
	}
	return true
}

// FilterRequired drops records missing a required key and returns how many
// were dropped.
func FilterRequired(t Table, recs []Record) ([]Record, int) {
	kept := recs[:0:0]
	for _, r := range recs {
		if HasRequired(t, r) {
			kept = append(kept, r)
		}
	}
	return kept, len(recs) - len(kept)
}

// ParseNumber accepts plain decimals with optional thousands separators.
func ParseNumber(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	clean = strings.ReplaceAll(clean, " ", "")
	return decimal.NewFromString(clean)
}

func nullIfEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
