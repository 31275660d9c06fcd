package schema

import (
	"fmt"
	"strings"
)

// Prepared is the outcome of running a sheet through the normalization pipeline.
type Prepared struct {
	Table   Table
	Records []Record
	Fetched int
	Dropped int
}

// Prepare validates the header (when strict), then normalizes, sanitizes and
// filters every row. Rows repeating a conflict key collapse to the last one.
// An empty sheet without a header prepares to zero records.
func Prepare(t Table, header []string, rows []Row, strict bool) (*Prepared, error) {
	p := &Prepared{Table: t, Fetched: len(rows)}

	if strict && len(header) > 0 {
		if err := CheckStrict(t, NormalizeHeader(t, header)); err != nil {
			return nil, err
		}
	}

	recs := make([]Record, 0, len(rows))
	for i, raw := range rows {
		// header is line 1
		rec, err := SanitizeRow(t, NormalizeRow(t, raw), i+2)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	p.Records, p.Dropped = FilterRequired(t, recs)
	var dups int
	p.Records, dups = DedupeConflictKeys(t, p.Records)
	p.Dropped += dups
	return p, nil
}

// DedupeConflictKeys keeps one record per conflict key. The last occurrence
// wins and takes the slot of the first. Tables without conflict keys are
// returned unchanged.
func DedupeConflictKeys(t Table, recs []Record) ([]Record, int) {
	if len(t.ConflictKeys) == 0 {
		return recs, 0
	}
	slot := make(map[string]int, len(recs))
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		k := conflictKey(t, r)
		if i, ok := slot[k]; ok {
			out[i] = r
			continue
		}
		slot[k] = len(out)
		out = append(out, r)
	}
	return out, len(recs) - len(out)
}

func conflictKey(t Table, r Record) string {
	parts := make([]string, len(t.ConflictKeys))
	for i, c := range t.ConflictKeys {
		parts[i] = fmt.Sprint(r[c])
	}
	return strings.Join(parts, "\x00")
}

// ShipmentIDs returns the distinct shipment_id values in first-seen order.
func (p *Prepared) ShipmentIDs() []string {
	seen := make(map[string]struct{}, len(p.Records))
	ids := make([]string, 0, len(p.Records))
	for _, r := range p.Records {
		id, _ := r["shipment_id"].(string)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// KeepShipments drops records whose shipment_id is not in ids and returns how
// many were dropped.
func (p *Prepared) KeepShipments(ids map[string]struct{}) int {
	kept := p.Records[:0]
	for _, r := range p.Records {
		id, _ := r["shipment_id"].(string)
		if _, ok := ids[id]; ok {
			kept = append(kept, r)
		}
	}
	dropped := len(p.Records) - len(kept)
	p.Records = kept
	p.Dropped += dropped
	return dropped
}
