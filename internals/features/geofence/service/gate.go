// Package service: pengecekan lokasi login (geofence). Tidak menyentuh data absensi.
package service

import (
	"fmt"
	"math"
	"strings"
)

const earthRadiusM = 6371008.8

type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// Distance: haversine dalam meter.
func Distance(a, b Point) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Status geolokasi yang dilaporkan browser
const (
	GeoOK          = "ok"
	GeoDenied      = "denied"
	GeoUnavailable = "unavailable"
)

const (
	ReasonInside      = "inside"
	ReasonOutside     = "outside_radius"
	ReasonDenied      = "permission_denied"
	ReasonUnavailable = "position_unavailable"
	ReasonDisabled    = "geofence_disabled"
)

type Reading struct {
	Point     Point
	AccuracyM float64
	Status    string
}

type Decision struct {
	Allowed   bool     `json:"allowed"`
	Reason    string   `json:"reason"`
	DistanceM *float64 `json:"distance_m,omitempty"`
	RadiusM   float64  `json:"radius_m"`
}

// Gate: titik referensi + radius. RadiusM <= 0 → geofence nonaktif (selalu lolos).
type Gate struct {
	Center  Point
	RadiusM float64
}

func NewGate(center Point, radiusM float64) (*Gate, error) {
	if radiusM > 0 && !center.Valid() {
		return nil, fmt.Errorf("geofence center out of range: %v,%v", center.Lat, center.Lng)
	}
	return &Gate{Center: center, RadiusM: radiusM}, nil
}

func (g *Gate) Enabled() bool { return g != nil && g.RadiusM > 0 }

func (g *Gate) Check(r Reading) Decision {
	if !g.Enabled() {
		return Decision{Allowed: true, Reason: ReasonDisabled}
	}
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case GeoDenied:
		return Decision{Reason: ReasonDenied, RadiusM: g.RadiusM}
	case GeoUnavailable:
		return Decision{Reason: ReasonUnavailable, RadiusM: g.RadiusM}
	}
	if !r.Point.Valid() {
		return Decision{Reason: ReasonUnavailable, RadiusM: g.RadiusM}
	}

	dist := math.Round(Distance(g.Center, r.Point)*10) / 10
	d := Decision{DistanceM: &dist, RadiusM: g.RadiusM, Reason: ReasonOutside}
	if dist <= g.RadiusM {
		d.Allowed = true
		d.Reason = ReasonInside
	}
	return d
}
