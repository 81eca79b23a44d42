// Package eligibility decides whether a donor may give blood.
//
// Rules are checked in a fixed order and the first failing rule supplies the
// reason. Evaluation is pure: callers assemble the Input and act on the Result.
package eligibility

import (
	"fmt"
	"strings"
)

// Rules is a threshold set. Registration and booking use different sets.
type Rules struct {
	// MinAge is skipped when zero.
	MinAge        int
	MinWeight     float64
	MinHemoglobin float64
	// MinGapDays is the required spacing since the last donation.
	MinGapDays int
}

// Registration thresholds applied when a donor account is created.
var Registration = Rules{
	MinAge:        18,
	MinWeight:     50,
	MinHemoglobin: 12,
	MinGapDays:    90,
}

// Appointment thresholds applied when a donor books a slot. The hemoglobin
// floor is higher than at registration; both values are kept as observed.
var Appointment = Rules{
	MinWeight:     50,
	MinHemoglobin: 12.5,
	MinGapDays:    90,
}

// Input carries the donor attributes under evaluation.
type Input struct {
	Age             int
	Weight          float64
	HemoglobinLevel float64
	Diseases        []string
	// DaysSinceLastDonation is nil when the donor has never donated.
	DaysSinceLastDonation *int
}

// Result is the outcome. Reason is empty when Eligible is true.
type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Evaluate applies r to in.
func (r Rules) Evaluate(in Input) Result {
	if r.MinAge > 0 && in.Age < r.MinAge {
		return reject("Donor must be at least %d years old (current: %d)", r.MinAge, in.Age)
	}
	if in.Weight < r.MinWeight {
		return reject("Weight must be at least %s kg (current: %s kg)", num(r.MinWeight), num(in.Weight))
	}
	if in.HemoglobinLevel < r.MinHemoglobin {
		return reject("Hemoglobin level must be at least %s g/dL (current: %s g/dL)", num(r.MinHemoglobin), num(in.HemoglobinLevel))
	}
	if diseases := NormalizeDiseases(in.Diseases); len(diseases) > 0 {
		return reject("Donors with the following conditions cannot donate: %s", strings.Join(diseases, ", "))
	}
	return r.CheckGap(in.DaysSinceLastDonation)
}

// CheckGap applies only the donation-gap rule. A nil gap passes.
func (r Rules) CheckGap(daysSinceLastDonation *int) Result {
	if daysSinceLastDonation == nil {
		return Result{Eligible: true}
	}
	since := *daysSinceLastDonation
	if since < 0 {
		return reject("Donation date is %d days before the last recorded donation", -since)
	}
	if since < r.MinGapDays {
		return reject("Last donation was %d days ago; wait %d more days (minimum gap %d days)", since, r.MinGapDays-since, r.MinGapDays)
	}
	return Result{Eligible: true}
}

// NormalizeDiseases trims and lowercases entries, dropping blanks and "none".
func NormalizeDiseases(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || d == "none" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SplitDiseases parses a comma separated list as entered on the registration form.
func SplitDiseases(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

func reject(format string, args ...any) Result {
	return Result{Eligible: false, Reason: fmt.Sprintf(format, args...)}
}

func num(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
