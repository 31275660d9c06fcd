package timeline

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

type State string

const (
	StateDone    State = "done"
	StateCurrent State = "current"
	StatePending State = "pending"
)

var (
	inProgressPattern = regexp.MustCompile(`(?i)in[\s-]*progress`)
	donePattern       = regexp.MustCompile(`(?i)\bdone\b|\bcomplete(d)?\b`)
)

// Step is one display-ready step of the timeline.
type Step struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Status     *string `json:"status"`
	Date       *string `json:"date"`
	State      State   `json:"state"`
	StatusText string  `json:"status_text"`
	Location   *string `json:"location,omitempty"`
	Code       *string `json:"code,omitempty"`
	// Reported is true when the sheet carries both a status and a date.
	Reported bool   `json:"reported"`
	Notes    []Note `json:"notes,omitempty"`
	Extras   []Step `json:"extras,omitempty"`
}

// Timeline is the derived progress view of one shipment.
type Timeline struct {
	Mode            string   `json:"mode"`
	Steps           []Step   `json:"steps"`
	Extras          []Step   `json:"extras,omitempty"`
	CurrentIndex    int      `json:"current_index"`
	CurrentKey      string   `json:"current_key,omitempty"`
	Percent         int      `json:"percent"`
	LatestStatus    *string  `json:"latest_status"`
	LatestDate      *string  `json:"latest_date"`
	EffectiveStatus string   `json:"effective_status"`
	Transshipment   string   `json:"transshipment"`
	Remarks         []string `json:"remarks,omitempty"`
}

// Input is everything Derive needs. Shipment holds the shipment columns used
// for locations, transshipment and remarks.
type Input struct {
	Mode      string
	Milestone map[string]*string
	Shipment  map[string]*string
	Notes     []NoteInput
}

func IsInProgress(status string) bool {
	return inProgressPattern.MatchString(status)
}

func IsStatusDone(status string) bool {
	return donePattern.MatchString(status)
}

// isDoneBase: an in-progress status is never done; a done-like status or any
// date is done.
func isDoneBase(e StepEntry) bool {
	st := deref(e.Status)
	if IsInProgress(st) {
		return false
	}
	if IsStatusDone(st) {
		return true
	}
	return e.Date != nil && *e.Date != ""
}

// HasTransshipmentData reports whether any column of the transshipment step or
// its sub-steps holds a value.
func HasTransshipmentData(record map[string]*string, transKey string) bool {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(transKey) + `(?:[._]\d+)?_(?:status|date)$`)
	for k, v := range record {
		if re.MatchString(strings.ToLower(k)) && strings.TrimSpace(deref(v)) != "" {
			return true
		}
	}
	return false
}

type classifier struct {
	profile  ModeProfile
	hasTrans bool
}

func (c classifier) isDone(e StepEntry) bool {
	if e.Key == c.profile.TransshipmentKey && !c.hasTrans {
		return true
	}
	if e.Key == c.profile.FinalKey && strings.Contains(strings.ToLower(deref(e.Status)), "delivered") {
		return true
	}
	return isDoneBase(e)
}

// CurrentIndex picks the first in-progress step, else the first step not
// done, else the last step. It returns -1 for an empty sequence.
func CurrentIndex(ordered []StepEntry, profile ModeProfile, record map[string]*string) int {
	if len(ordered) == 0 {
		return -1
	}
	c := classifier{profile: profile, hasTrans: HasTransshipmentData(record, profile.TransshipmentKey)}
	return c.currentIndex(ordered)
}

func (c classifier) currentIndex(ordered []StepEntry) int {
	for i, e := range ordered {
		if IsInProgress(deref(e.Status)) {
			return i
		}
	}
	for i, e := range ordered {
		if !c.isDone(e) {
			return i
		}
	}
	return len(ordered) - 1
}

// Percent is round((current+1)/total*100) clamped to 100; 0 with no steps.
func Percent(current, total int) int {
	if total <= 0 || current < 0 {
		return 0
	}
	p := int(math.Round(float64(current+1) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}

// Derive builds the display timeline for one shipment.
func Derive(in Input) *Timeline {
	profile := ProfileFor(in.Mode)
	ordered, extras := GroupMilestones(in.Milestone)
	c := classifier{profile: profile, hasTrans: HasTransshipmentData(in.Milestone, profile.TransshipmentKey)}

	cur := -1
	if len(ordered) > 0 {
		cur = c.currentIndex(ordered)
	}

	tl := &Timeline{
		Mode:          profile.Mode,
		CurrentIndex:  cur,
		Percent:       Percent(cur, len(ordered)),
		Transshipment: TransshipmentDisplay(in.Shipment["transshipment_ports"], hasKey(in.Shipment, "transshipment_ports")),
		Remarks:       SplitRemarks(deref(in.Shipment["remarks"])),
	}

	notes := GroupNotesByStep(in.Notes)

	extraSteps := make([]Step, 0, len(extras))
	for _, ex := range extras {
		extraSteps = append(extraSteps, Step{
			Key:        ex.Key,
			Label:      profile.Label(ex.Key),
			Status:     ex.Status,
			Date:       ex.Date,
			State:      extraState(ex),
			StatusText: StatusText(ex.Status, ex.Date),
			Reported:   ex.Status != nil && ex.Date != nil,
			Notes:      notes[ex.Key],
		})
	}
	tl.Extras = extraSteps

	tl.Steps = make([]Step, 0, len(ordered))
	for i, e := range ordered {
		st := Step{
			Key:        e.Key,
			Label:      profile.Label(e.Key),
			Status:     e.Status,
			Date:       e.Date,
			State:      c.state(i, cur, e),
			StatusText: StatusText(e.Status, e.Date),
			Location:   shipmentField(in.Shipment, locationFields[profile.Mode][e.Key]),
			Code:       shipmentField(in.Shipment, codeFields[e.Key]),
			Reported:   e.Status != nil && e.Date != nil,
			Notes:      notes[e.Key],
		}
		if e.Key == profile.TransshipmentKey && len(extraSteps) > 0 {
			st.Extras = extraSteps
		}
		tl.Steps = append(tl.Steps, st)
	}
	if cur >= 0 {
		tl.CurrentKey = ordered[cur].Key
	}

	if latest := LatestMilestoneStatus(ordered, extras); latest != nil && latest.Status != nil {
		tl.LatestStatus = latest.Status
		tl.LatestDate = latest.Date
		tl.EffectiveStatus = fmt.Sprintf("%s (%s)", *latest.Status, FormatYMD(deref(latest.Date)))
	} else {
		tl.EffectiveStatus = "N/A"
	}
	return tl
}

func (c classifier) state(idx, cur int, e StepEntry) State {
	switch {
	case idx < cur:
		return StateDone
	case idx == cur:
		if c.isDone(e) {
			return StateDone
		}
		return StateCurrent
	default:
		return StatePending
	}
}

func extraState(e StepEntry) State {
	if isDoneBase(e) {
		return StateDone
	}
	if IsInProgress(deref(e.Status)) {
		return StateCurrent
	}
	return StatePending
}

// StatusText renders "status (YYYY-MM-DD)", "status", "Done (YYYY-MM-DD)" or "N/A".
func StatusText(status, date *string) string {
	st := strings.TrimSpace(deref(status))
	dt := strings.TrimSpace(deref(date))
	switch {
	case st != "" && dt != "":
		return fmt.Sprintf("%s (%s)", st, FormatYMD(dt))
	case st != "":
		return st
	case dt != "":
		return fmt.Sprintf("Done (%s)", FormatYMD(dt))
	default:
		return "N/A"
	}
}

var ymdPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// FormatYMD shortens ISO timestamps to their date; other text is returned as is.
func FormatYMD(d string) string {
	if d == "" {
		return "—"
	}
	if ymdPrefix.MatchString(d) {
		return d[:10]
	}
	return d
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate accepts the date formats seen in the sheets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LatestMilestoneStatus returns the step with the most recent parseable date
// across whole and fractional steps, or nil when none has one.
func LatestMilestoneStatus(ordered, extras []StepEntry) *StepEntry {
	var (
		best     *StepEntry
		bestTime time.Time
	)
	for _, list := range [][]StepEntry{ordered, extras} {
		for i := range list {
			t, ok := ParseDate(deref(list[i].Date))
			if !ok {
				continue
			}
			if best == nil || t.After(bestTime) {
				e := list[i]
				best, bestTime = &e, t
			}
		}
	}
	return best
}

// TransshipmentDisplay renders the transshipment ports cell: "No" when the
// column is absent or null, the ports when set, "Yes" when blank.
func TransshipmentDisplay(v *string, present bool) string {
	if !present || v == nil {
		return "No"
	}
	if s := strings.TrimSpace(*v); s != "" {
		return s
	}
	return "Yes"
}

var remarksSplit = regexp.MustCompile(`[;\n]+`)

// SplitRemarks turns "a; b\nc" into capitalized bullet lines.
func SplitRemarks(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range remarksSplit.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r := []rune(part)
		out = append(out, strings.ToUpper(string(r[0]))+string(r[1:]))
	}
	return out
}

func shipmentField(s map[string]*string, col string) *string {
	if col == "" {
		return nil
	}
	return trimmed(s[col])
}

func hasKey(m map[string]*string, k string) bool {
	_, ok := m[k]
	return ok
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
