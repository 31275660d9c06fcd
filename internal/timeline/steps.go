package timeline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const ExtraStepLabel = "(Optional) Extra Transshipment"

var seaLabels = map[string]string{
	"step1":  "Pickup at Shipper",
	"step2":  "Received at Origin Warehouse / CY",
	"step3":  "Export Customs Clearance",
	"step4":  "Place of Receipt (if different)",
	"step5":  "Port of Loading (POL)",
	"step6":  "Transshipment Port(s)",
	"step7":  "Port of Discharge (POD)",
	"step8":  "Import Customs Clearance",
	"step9":  "Place of Delivery (if different)",
	"step10": "Final Delivery to Consignee",
}

var airLabels = map[string]string{
	"step1": "Pickup at Shipper",
	"step2": "Received at Origin Warehouse / CY",
	"step3": "Export Customs Clearance",
	"step4": "Airport of Loading (AOL)",
	"step5": "Transit Airport(s)",
	"step6": "Airport of Destination (AOD)",
	"step7": "Import Customs Clearance",
	"step8": "Final Delivery to Consignee",
}

// locationFields names the shipment column shown next to a step.
var locationFields = map[string]map[string]string{
	"SEA": {"step4": "place_of_receipt", "step5": "pol_aol", "step7": "pod_aod", "step9": "place_of_delivery"},
	"AIR": {"step4": "pol_aol", "step6": "pod_aod"},
}

// codeFields names the port code shown as a badge on a step.
var codeFields = map[string]string{"step5": "pol_aol", "step7": "pod_aod"}

// ModeProfile holds the mode-specific step layout.
type ModeProfile struct {
	Mode             string
	Labels           map[string]string
	TransshipmentKey string
	FinalKey         string
}

var (
	SeaProfile = ModeProfile{Mode: "SEA", Labels: seaLabels, TransshipmentKey: "step6", FinalKey: "step10"}
	AirProfile = ModeProfile{Mode: "AIR", Labels: airLabels, TransshipmentKey: "step5", FinalKey: "step8"}
)

// ProfileFor returns the SEA profile for "SEA" and the AIR profile otherwise.
func ProfileFor(mode string) ModeProfile {
	if strings.EqualFold(strings.TrimSpace(mode), "SEA") {
		return SeaProfile
	}
	return AirProfile
}

// Label returns the display label of a step key.
func (p ModeProfile) Label(key string) string {
	if l, ok := p.Labels[key]; ok {
		return l
	}
	if strings.Contains(key, ".") {
		return ExtraStepLabel
	}
	return strings.ToUpper(key)
}

var (
	numericStepPattern = regexp.MustCompile(`^\d+([._]\d+)?$`)
	columnPattern      = regexp.MustCompile(`^(step\d+(?:[._]\d+)?)_(status|date)$`)
)

// NormalizeStepKey maps "6.1", "6_1", "step6_1", "Step 6.1" to "step6.1".
// Blank input maps to "step?".
func NormalizeStepKey(raw string) string {
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if s == "" {
		return "step?"
	}
	if numericStepPattern.MatchString(s) {
		return "step" + strings.Replace(s, "_", ".", 1)
	}
	if strings.HasPrefix(s, "step") {
		return strings.Replace(s, "_", ".", 1)
	}
	return s
}

// StepEntry is one step's raw status/date pair.
type StepEntry struct {
	Key    string  `json:"key"`
	Status *string `json:"status"`
	Date   *string `json:"date"`
}

// IsExtra reports whether the step is a fractional sub-step.
func (e StepEntry) IsExtra() bool {
	return strings.Contains(e.Key, ".")
}

// GroupMilestones pairs stepK[.F]_status / stepK[.F]_date columns by step key.
// Whole steps are returned in numeric order; fractional steps are returned
// separately as extras, also in numeric order. Other columns are ignored.
func GroupMilestones(record map[string]*string) (ordered, extras []StepEntry) {
	if len(record) == 0 {
		return nil, nil
	}

	byKey := make(map[string]*StepEntry)
	for col, v := range record {
		m := columnPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(col)))
		if m == nil {
			continue
		}
		key := NormalizeStepKey(m[1])
		e, ok := byKey[key]
		if !ok {
			e = &StepEntry{Key: key}
			byKey[key] = e
		}
		if m[2] == "status" {
			e.Status = trimmed(v)
		} else {
			e.Date = trimmed(v)
		}
	}

	for _, e := range byKey {
		if e.IsExtra() {
			extras = append(extras, *e)
		} else {
			ordered = append(ordered, *e)
		}
	}
	sortSteps(ordered)
	sortSteps(extras)
	return ordered, extras
}

func sortSteps(steps []StepEntry) {
	sort.Slice(steps, func(i, j int) bool {
		ai, af := stepNumber(steps[i].Key)
		bi, bf := stepNumber(steps[j].Key)
		if ai != bi {
			return ai < bi
		}
		return af < bf
	})
}

// stepNumber splits "step6.2" into 6 and 2.
func stepNumber(key string) (int, int) {
	rest := strings.TrimPrefix(key, "step")
	whole, frac, _ := strings.Cut(rest, ".")
	w, _ := strconv.Atoi(whole)
	f, _ := strconv.Atoi(frac)
	return w, f
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
