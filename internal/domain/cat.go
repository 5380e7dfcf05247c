package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cat is a geo-tagged record owned by exactly one user.
type Cat struct {
	ID        string    `json:"id"`
	Name      string    `json:"cat_name"`
	Weight    float64   `json:"weight"`
	OwnerID   string    `json:"owner"`
	Filename  string    `json:"filename"`
	Birthdate time.Time `json:"birthdate"`
	Location  Point     `json:"location"`
}

// Point is a WGS84 position.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Coordinates returns the point in GeoJSON order.
func (p Point) Coordinates() []float64 {
	return []float64{p.Lng, p.Lat}
}

// PointFromCoordinates parses a GeoJSON [lng, lat] pair.
func PointFromCoordinates(coords []float64) (Point, error) {
	if len(coords) != 2 {
		return Point{}, ValidationError{Field: "location.coordinates", Reason: "expected [lng, lat]"}
	}
	p := Point{Lng: coords[0], Lat: coords[1]}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

func (p Point) Validate() error {
	if p.Lng < -180 || p.Lng > 180 {
		return ValidationError{Field: "location.lng", Reason: "out of range"}
	}
	if p.Lat < -90 || p.Lat > 90 {
		return ValidationError{Field: "location.lat", Reason: "out of range"}
	}
	return nil
}

// CatInput is the payload of a create request. Owner is never taken from it.
type CatInput struct {
	Name      string
	Weight    float64
	Filename  string
	Birthdate time.Time
	Location  Point
}

func (in CatInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ValidationError{Field: "cat_name", Reason: "required"}
	}
	if in.Weight <= 0 {
		return ValidationError{Field: "weight", Reason: "must be positive"}
	}
	if strings.TrimSpace(in.Filename) == "" {
		return ValidationError{Field: "filename", Reason: "required"}
	}
	if in.Birthdate.IsZero() {
		return ValidationError{Field: "birthdate", Reason: "required"}
	}
	return in.Location.Validate()
}

// CatPatch is a partial update; nil fields keep their stored value.
type CatPatch struct {
	Name      *string
	Weight    *float64
	Filename  *string
	Birthdate *time.Time
	Location  *Point
}

func (p CatPatch) Empty() bool {
	return p.Name == nil && p.Weight == nil && p.Filename == nil && p.Birthdate == nil && p.Location == nil
}

func (p CatPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ValidationError{Field: "cat_name", Reason: "must not be empty"}
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return ValidationError{Field: "weight", Reason: "must be positive"}
	}
	if p.Filename != nil && strings.TrimSpace(*p.Filename) == "" {
		return ValidationError{Field: "filename", Reason: "must not be empty"}
	}
	if p.Location != nil {
		return p.Location.Validate()
	}
	return nil
}

// Apply returns c with the present patch fields overwritten.
func (p CatPatch) Apply(c Cat) Cat {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Weight != nil {
		c.Weight = *p.Weight
	}
	if p.Filename != nil {
		c.Filename = *p.Filename
	}
	if p.Birthdate != nil {
		c.Birthdate = *p.Birthdate
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	return c
}

// Region is an axis-aligned lat/lng box given by two corners.
type Region struct {
	TopRight   Point
	BottomLeft Point
}

// Polygon converts the box into a closed ring: BL, TL, TR, BR, BL.
func (r Region) Polygon() Polygon {
	bl, tr := r.BottomLeft, r.TopRight
	return Polygon{
		{Lng: bl.Lng, Lat: bl.Lat},
		{Lng: bl.Lng, Lat: tr.Lat},
		{Lng: tr.Lng, Lat: tr.Lat},
		{Lng: tr.Lng, Lat: bl.Lat},
		{Lng: bl.Lng, Lat: bl.Lat},
	}
}

// Polygon is a single closed ring; the first and last vertices are equal.
type Polygon []Point

func (pg Polygon) Closed() bool {
	return len(pg) >= 4 && pg[0] == pg[len(pg)-1]
}

// WKT renders the ring as a well-known-text POLYGON in lng lat order.
func (pg Polygon) WKT() string {
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, p := range pg {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(p.Lng, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}
	b.WriteString("))")
	return b.String()
}

// Contains reports whether p lies inside the ring or on its boundary.
func (pg Polygon) Contains(p Point) bool {
	if !pg.Closed() {
		return false
	}
	inside := false
	for i, j := 0, len(pg)-2; i < len(pg)-1; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if cross != 0 {
		return false
	}
	return p.Lng >= min(a.Lng, b.Lng) && p.Lng <= max(a.Lng, b.Lng) &&
		p.Lat >= min(a.Lat, b.Lat) && p.Lat <= max(a.Lat, b.Lat)
}

func (pg Polygon) String() string {
	return fmt.Sprintf("polygon(%d vertices)", len(pg))
}

// CatEvent is published after every successful cat mutation.
type CatEvent struct {
	Type    CatEventType `json:"type"`
	Cat     Cat          `json:"cat"`
	ActorID string       `json:"actor"`
	At      time.Time    `json:"at"`
}
