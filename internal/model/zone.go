package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DeliveryZone is an area the restaurant delivers to.  Boundary is the
// polygon drawn on the map editor and is exchanged as GeoJSON.
//
// Fields:
//  ID           – server assigned UUID.
//  RestaurantID – owning restaurant.
//  ZoneName     – display name (e.g. "Downtown").
//  Description  – optional free text.
//  DeliveryFee  – fee charged for orders in the zone.
//  MinOrder     – optional minimum order amount.
//  Boundary     – optional GeoJSON Polygon.
type DeliveryZone struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurant_id"`
	ZoneName     string      `json:"zone_name"`
	Description  *string     `json:"description,omitempty"`
	DeliveryFee  float64     `json:"delivery_fee"`
	MinOrder     *float64    `json:"min_order,omitempty"`
	Boundary     *GeoPolygon `json:"boundary,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (z DeliveryZone) EntityID() string { return z.ID }
func (z DeliveryZone) Scope() string    { return z.RestaurantID }

type ZoneInput struct {
	ZoneName    string   `json:"zone_name"`
	Description *string  `json:"description,omitempty"`
	DeliveryFee float64  `json:"delivery_fee"`
	MinOrder    *float64 `json:"min_order,omitempty"`
}

type ZonePatch struct {
	ZoneName    *string  `json:"zone_name,omitempty"`
	Description *string  `json:"description,omitempty"`
	DeliveryFee *float64 `json:"delivery_fee,omitempty"`
	MinOrder    *float64 `json:"min_order,omitempty"`
}

func (p ZonePatch) Apply(z DeliveryZone) DeliveryZone {
	if p.ZoneName != nil {
		z.ZoneName = *p.ZoneName
	}
	if p.Description != nil {
		z.Description = p.Description
	}
	if p.DeliveryFee != nil {
		z.DeliveryFee = *p.DeliveryFee
	}
	if p.MinOrder != nil {
		z.MinOrder = p.MinOrder
	}
	return z
}

// GeoPolygon is a GeoJSON Polygon geometry.  Positions are [lng, lat].
type GeoPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// ErrInvalidPolygon is wrapped by every GeoPolygon validation failure.
var ErrInvalidPolygon = errors.New("invalid polygon")

// NewPolygon builds a single-ring polygon, closing the ring when the
// caller left it open.
func NewPolygon(ring ...[2]float64) GeoPolygon {
	r := append([][2]float64(nil), ring...)
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return GeoPolygon{Type: "Polygon", Coordinates: [][][2]float64{r}}
}

// Validate checks the polygon is well formed: type Polygon, at least one
// closed ring of four or more positions, all positions in range.
func (g GeoPolygon) Validate() error {
	if g.Type != "Polygon" {
		return fmt.Errorf("%w: type %q, want Polygon", ErrInvalidPolygon, g.Type)
	}
	if len(g.Coordinates) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}
	for i, ring := range g.Coordinates {
		if len(ring) < 4 {
			return fmt.Errorf("%w: ring %d has %d positions, need at least 4", ErrInvalidPolygon, i, len(ring))
		}
		if ring[0] != ring[len(ring)-1] {
			return fmt.Errorf("%w: ring %d is not closed", ErrInvalidPolygon, i)
		}
		for _, p := range ring {
			if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
				return fmt.Errorf("%w: position [%g, %g] out of range", ErrInvalidPolygon, p[0], p[1])
			}
		}
	}
	return nil
}

// UnmarshalJSON accepts either a bare geometry or a GeoJSON Feature
// wrapping one, which is what map drawing tools usually emit.
func (g *GeoPolygon) UnmarshalJSON(b []byte) error {
	var probe struct {
		Type        string          `json:"type"`
		Geometry    json.RawMessage `json:"geometry"`
		Coordinates [][][2]float64  `json:"coordinates"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.Type == "Feature" {
		if len(probe.Geometry) == 0 {
			return fmt.Errorf("%w: feature without geometry", ErrInvalidPolygon)
		}
		return g.UnmarshalJSON(probe.Geometry)
	}
	g.Type = probe.Type
	g.Coordinates = probe.Coordinates
	return nil
}
