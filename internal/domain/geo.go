package domain

import "errors"

// PointType is the only GeoJSON geometry accepted.
const PointType = "Point"

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: PointType, Coordinates: [2]float64{lng, lat}}
}

// Longitude of the point.
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Latitude of the point.
func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// Validate checks geometry type and coordinate ranges.
func (p GeoPoint) Validate() error {
	if p.Type != PointType {
		return errors.New("location type must be Point")
	}
	if p.Longitude() < -180 || p.Longitude() > 180 {
		return errors.New("longitude out of range")
	}
	if p.Latitude() < -90 || p.Latitude() > 90 {
		return errors.New("latitude out of range")
	}
	return nil
}
