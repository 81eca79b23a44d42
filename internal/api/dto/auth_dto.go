package dto

import (
	"time"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// RegisterRequest payload. Donor fields are read only for the donor role.
type RegisterRequest struct {
	Name            string           `json:"name" validate:"required,max=120"`
	Email           string           `json:"email" validate:"required,email"`
	Password        string           `json:"password" validate:"required,min=6"`
	Role            string           `json:"role" validate:"required,role"`
	BloodGroup      string           `json:"bloodGroup" validate:"omitempty,bloodgroup"`
	Age             int              `json:"age" validate:"gte=0"`
	Weight          float64          `json:"weight" validate:"gte=0"`
	HemoglobinLevel float64          `json:"hemoglobinLevel" validate:"gte=0"`
	Diseases        DiseaseList      `json:"diseases"`
	Location        *GeoPointPayload `json:"location"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// DonorProfileResponse is the donor's own profile.
type DonorProfileResponse struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	BloodGroup       domain.BloodGroup `json:"bloodGroup"`
	Age              int               `json:"age"`
	Weight           float64           `json:"weight"`
	HemoglobinLevel  float64           `json:"hemoglobinLevel"`
	Diseases         []string          `json:"diseases"`
	Eligible         bool              `json:"eligible"`
	LastDonationDate *time.Time        `json:"lastDonationDate"`
	NextEligibleDate *time.Time        `json:"nextEligibleDate"`
	Location         *domain.GeoPoint  `json:"location,omitempty"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewDonorProfileResponse maps a profile.
func NewDonorProfileResponse(p *domain.DonorProfile) DonorProfileResponse {
	diseases := p.Diseases
	if diseases == nil {
		diseases = []string{}
	}
	return DonorProfileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		BloodGroup:       p.BloodGroup,
		Age:              p.Age,
		Weight:           p.Weight,
		HemoglobinLevel:  p.HemoglobinLevel,
		Diseases:         diseases,
		Eligible:         p.Eligible,
		LastDonationDate: p.LastDonationDate,
		NextEligibleDate: p.NextEligibleDate(),
		Location:         p.Location,
	}
}
