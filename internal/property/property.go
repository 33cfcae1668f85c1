package property

import (
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Specification describes the building on a property.
type Specification struct {
	// Built is the year the property was built.
	Built int
	// Lot is the size of the lot in acres.
	Lot       float64
	Bedrooms  int
	Bathrooms int
	// Size is in square feet.
	Size int
}

// Location is a GeoJSON point.
type Location struct {
	Type string
	// Coordinates are latitude, longitude.
	Coordinates [2]float64
}

// Property is a listing. Owner never changes after creation.
type Property struct {
	ID            string
	Owner         string
	Address       string
	Price         int
	Description   string
	Location      Location
	Specification Specification
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Draft is a property as submitted by its owner.
type Draft struct {
	Owner         string
	Address       string
	Price         int
	Description   string
	Specification Specification
	Image         []byte
}

// SpecificationPatch lists optional changes to a specification.
type SpecificationPatch struct {
	Built     *int
	Lot       *float64
	Bedrooms  *int
	Bathrooms *int
	Size      *int
}

// Patch lists optional changes to a property. Only the owner may apply it.
type Patch struct {
	ID            string
	Owner         string
	Price         *int
	Description   *string
	Specification SpecificationPatch
}

// Apply returns p with the patch applied.
func (pt Patch) Apply(p Property) Property {
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}

	s := pt.Specification
	if s.Built != nil {
		p.Specification.Built = *s.Built
	}
	if s.Lot != nil {
		p.Specification.Lot = *s.Lot
	}
	if s.Bedrooms != nil {
		p.Specification.Bedrooms = *s.Bedrooms
	}
	if s.Bathrooms != nil {
		p.Specification.Bathrooms = *s.Bathrooms
	}
	if s.Size != nil {
		p.Specification.Size = *s.Size
	}

	return p
}

// Query filters the property list. Nil bounds are ignored.
type Query struct {
	Offset       int
	Limit        int
	PriceMin     *int
	PriceMax     *int
	LotMin       *float64
	LotMax       *float64
	SizeMin      *int
	SizeMax      *int
	MinBedrooms  *int
	MinBathrooms *int
}

// normalize applies the default limit and caps it.
func (q Query) normalize() Query {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}
