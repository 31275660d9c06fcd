package providers

import (
	"net/url"
	"regexp"
	"strings"
)

// URLStrategy derives one candidate download URL from a spreadsheet link. ok is
// false when the strategy does not apply to the link.
type URLStrategy struct {
	Name   string
	Derive func(u *url.URL, raw string) (candidate string, ok bool)
}

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern           = regexp.MustCompile(`gid=([0-9]+)`)
)

// DefaultURLStrategies are tried in order; the raw link is always last.
var DefaultURLStrategies = []URLStrategy{
	{Name: "export_as_is", Derive: exportLinkAsIs},
	{Name: "edit_to_export", Derive: editLinkToExport},
	{Name: "published_csv", Derive: publishedLinkToCSV},
	{Name: "original", Derive: originalURL},
}

// Candidate is one URL to try and the strategy that produced it.
type Candidate struct {
	Strategy string
	URL      string
}

// CandidateURLs applies the strategies to raw and returns de-duplicated
// candidates in strategy order.
func CandidateURLs(raw string, strategies []URLStrategy) []Candidate {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return []Candidate{{Strategy: "original", URL: raw}}
	}

	seen := make(map[string]struct{}, len(strategies))
	out := make([]Candidate, 0, len(strategies))
	for _, s := range strategies {
		c, ok := s.Derive(u, raw)
		if !ok || c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, Candidate{Strategy: s.Name, URL: c})
	}
	return out
}

// SpreadsheetRef extracts the spreadsheet id and gid ("0" when absent).
func SpreadsheetRef(u *url.URL) (id, gid string, ok bool) {
	m := spreadsheetIDPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", false
	}
	gid = "0"
	if g := u.Query().Get("gid"); g != "" {
		gid = g
	} else if gm := gidPattern.FindStringSubmatch(u.Fragment); gm != nil {
		gid = gm[1]
	}
	return m[1], gid, true
}

func exportLinkAsIs(u *url.URL, raw string) (string, bool) {
	return raw, strings.Contains(u.Path, "/export")
}

func editLinkToExport(u *url.URL, _ string) (string, bool) {
	id, gid, ok := SpreadsheetRef(u)
	if !ok || strings.Contains(u.Path, "/d/e/") {
		return "", false
	}
	return "https://docs.google.com/spreadsheets/d/" + id + "/export?format=csv&gid=" + gid, true
}

// publishedLinkToCSV handles "publish to web" links (/pub, /pubhtml).
func publishedLinkToCSV(u *url.URL, _ string) (string, bool) {
	p := u.Path
	switch {
	case strings.HasSuffix(p, "/pubhtml"):
		p = strings.TrimSuffix(p, "html")
	case strings.HasSuffix(p, "/pub"):
	default:
		return "", false
	}
	q := u.Query()
	if q.Get("output") == "csv" {
		return "", false
	}
	q.Set("output", "csv")
	c := *u
	c.Path = p
	c.RawQuery = q.Encode()
	c.Fragment = ""
	return c.String(), true
}

func originalURL(_ *url.URL, raw string) (string, bool) {
	return raw, true
}
