package domain

import "time"

// DonationGap is the minimum spacing between two donations.
const DonationGap = 90 * 24 * time.Hour

// DonorProfile holds the health attributes screened for eligibility.
// There is at most one profile per user.
type DonorProfile struct {
	ID               string
	UserID           string
	BloodGroup       BloodGroup
	Age              int
	Weight           float64
	HemoglobinLevel  float64
	Diseases         []string
	Eligible         bool
	LastDonationDate *time.Time
	Location         *GeoPoint
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DaysSinceLastDonation returns whole days elapsed at now, or nil when the donor never donated.
func (p *DonorProfile) DaysSinceLastDonation(now time.Time) *int {
	if p == nil || p.LastDonationDate == nil {
		return nil
	}
	days := DaysBetween(*p.LastDonationDate, now)
	return &days
}

// NextEligibleDate is the earliest date the donor may donate again.
func (p *DonorProfile) NextEligibleDate() *time.Time {
	if p == nil || p.LastDonationDate == nil {
		return nil
	}
	next := p.LastDonationDate.Add(DonationGap)
	return &next
}

// DaysBetween counts whole 24h periods from a to b, negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
