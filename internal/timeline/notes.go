package timeline

import (
	"sort"
	"strings"
	"time"
)

// NoteInput is a stored note as read from the database.
type NoteInput struct {
	ID       uint64
	Step     *string
	Note     *string
	NoteType *string
	NoteTime *string
}

// Note is a note attached to a step.
type Note struct {
	ID   uint64 `json:"id"`
	Step string `json:"step"`
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
	Time string `json:"time,omitempty"`

	at time.Time
}

// GroupNotesByStep groups notes by normalized step key, newest first.
// Notes with an unparseable time sort last, keeping their input order.
func GroupNotesByStep(notes []NoteInput) map[string][]Note {
	out := make(map[string][]Note)
	for _, n := range notes {
		key := NormalizeStepKey(deref(n.Step))
		at, _ := ParseDate(deref(n.NoteTime))
		out[key] = append(out[key], Note{
			ID:   n.ID,
			Step: key,
			Text: deref(n.Note),
			Type: strings.TrimSpace(deref(n.NoteType)),
			Time: noteTimeText(deref(n.NoteTime)),
			at:   at,
		})
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].at.After(list[j].at)
		})
	}
	return out
}

// noteTimeText trims an ISO timestamp to "YYYY-MM-DD HH:MM:SS".
func noteTimeText(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 19 && ymdPrefix.MatchString(raw) {
		if _, ok := ParseDate(raw); ok {
			return strings.Replace(raw[:19], "T", " ", 1)
		}
	}
	return raw
}
