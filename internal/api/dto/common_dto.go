package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// GeoPointPayload is a GeoJSON point as sent by clients.
type GeoPointPayload struct {
	Type        string    `json:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

// ToDomain converts the payload. Call after validation.
func (p *GeoPointPayload) ToDomain() *domain.GeoPoint {
	if p == nil || len(p.Coordinates) != 2 {
		return nil
	}
	point := domain.NewGeoPoint(p.Coordinates[0], p.Coordinates[1])
	return &point
}

// DiseaseList accepts either a JSON array or a comma separated string.
type DiseaseList []string

func (d *DiseaseList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*d = list
		return nil
	}
	var csv string
	if err := json.Unmarshal(data, &csv); err != nil {
		return errors.New("diseases must be a list or a comma separated string")
	}
	*d = strings.Split(csv, ",")
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps, HTML datetime-local values and plain dates (UTC).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("date must be RFC 3339 or YYYY-MM-DD")
}

// MessageResponse pairs a confirmation message with the affected record.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}
