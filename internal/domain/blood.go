package domain

import "slices"

// BloodGroup is the partition key for inventory.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

// BloodGroups lists every group in display order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos,
	BloodGroupANeg,
	BloodGroupBPos,
	BloodGroupBNeg,
	BloodGroupABPos,
	BloodGroupABNeg,
	BloodGroupOPos,
	BloodGroupONeg,
}

// Valid reports whether g is one of the eight enumerated groups.
func (g BloodGroup) Valid() bool {
	return slices.Contains(BloodGroups, g)
}

// Rank is the display position of g, or len(BloodGroups) when unknown.
func (g BloodGroup) Rank() int {
	if idx := slices.Index(BloodGroups, g); idx >= 0 {
		return idx
	}
	return len(BloodGroups)
}
