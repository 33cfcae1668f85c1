package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/willemschots/tuffyestates/internal/db"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/property"
)

// NowFunc is a function that returns the current time.
type NowFunc func() time.Time

// Store keeps properties in the properties collection.
type Store struct {
	gw      *db.Gateway
	nowFunc NowFunc
}

// New creates a new Store.
func New(gw *db.Gateway, nowFunc NowFunc) *Store {
	return &Store{
		gw:      gw,
		nowFunc: nowFunc,
	}
}

type specificationDoc struct {
	Built     int     `bson:"built" json:"built"`
	Lot       float64 `bson:"lot" json:"lot"`
	Bedrooms  int     `bson:"bedrooms" json:"bedrooms"`
	Bathrooms int     `bson:"bathrooms" json:"bathrooms"`
	Size      int     `bson:"size" json:"size"`
}

type locationDoc struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

type propertyDoc struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	Owner         primitive.ObjectID `bson:"owner" json:"owner"`
	Address       string             `bson:"address" json:"address"`
	Price         int                `bson:"price" json:"price"`
	Description   string             `bson:"description" json:"description"`
	Location      locationDoc        `bson:"location" json:"location"`
	Specification specificationDoc   `bson:"specification" json:"specification"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (s *Store) NewID() string {
	return db.NewID()
}

// Create inserts the property and sets its timestamps.
func (s *Store) Create(ctx context.Context, p *property.Property) error {
	m, err := s.gw.Model(ctx, db.Properties)
	if err != nil {
		return err
	}

	now := s.nowFunc().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	doc, err := toDoc(*p)
	if err != nil {
		return err
	}

	err = m.Check(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", errorz.ErrConstraintViolated, err)
	}

	_, err = m.Coll.InsertOne(ctx, doc)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// Find returns the properties matching f, ordered by ID.
func (s *Store) Find(ctx context.Context, f *property.Filter) ([]property.Property, error) {
	m, err := s.gw.Model(ctx, db.Properties)
	if err != nil {
		return nil, err
	}

	filter, ok := buildFilter(f)
	if !ok {
		return []property.Property{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts = opts.SetLimit(int64(f.Limit))
	}

	cur, err := m.Coll.Find(ctx, filter.D(), opts)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	var docs []propertyDoc
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	out := make([]property.Property, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toProperty())
	}

	return out, nil
}

// buildFilter reports false when the filter can not match anything.
func buildFilter(f *property.Filter) (*db.Filter, bool) {
	var filter db.Filter

	if len(f.IDs) > 0 {
		ids := make([]any, 0, len(f.IDs))
		for _, raw := range f.IDs {
			id, err := db.ObjectID(raw)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return nil, false
		}
		filter.In("_id", ids...)
	}

	if f.Owner != "" {
		owner, err := db.ObjectID(f.Owner)
		if err != nil {
			return nil, false
		}
		filter.Eq("owner", owner)
	}

	q := f.Query
	if q.PriceMin != nil {
		filter.Gte("price", *q.PriceMin)
	}
	if q.PriceMax != nil {
		filter.Lte("price", *q.PriceMax)
	}
	if q.LotMin != nil {
		filter.Gte("specification.lot", *q.LotMin)
	}
	if q.LotMax != nil {
		filter.Lte("specification.lot", *q.LotMax)
	}
	if q.SizeMin != nil {
		filter.Gte("specification.size", *q.SizeMin)
	}
	if q.SizeMax != nil {
		filter.Lte("specification.size", *q.SizeMax)
	}
	if q.MinBedrooms != nil {
		filter.Gte("specification.bedrooms", *q.MinBedrooms)
	}
	if q.MinBathrooms != nil {
		filter.Gte("specification.bathrooms", *q.MinBathrooms)
	}

	return &filter, true
}

// Update applies the patch to a property owned by patch.Owner.
func (s *Store) Update(ctx context.Context, patch property.Patch) error {
	m, err := s.gw.Model(ctx, db.Properties)
	if err != nil {
		return err
	}

	sel, err := ownedBy(patch.ID, patch.Owner)
	if err != nil {
		return err
	}

	var current propertyDoc
	err = m.Coll.FindOne(ctx, sel).Decode(&current)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	p := patch.Apply(current.toProperty())
	p.UpdatedAt = s.nowFunc().UTC().Truncate(time.Millisecond)

	doc, err := toDoc(p)
	if err != nil {
		return err
	}

	err = m.Check(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", errorz.ErrConstraintViolated, err)
	}

	res, err := m.Coll.ReplaceOne(ctx, sel, doc)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if res.MatchedCount == 0 {
		return errorz.ErrNotFound
	}

	return nil
}

// Delete removes a property owned by owner.
func (s *Store) Delete(ctx context.Context, id, owner string) error {
	m, err := s.gw.Model(ctx, db.Properties)
	if err != nil {
		return err
	}

	sel, err := ownedBy(id, owner)
	if err != nil {
		return err
	}

	res, err := m.Coll.DeleteOne(ctx, sel)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if res.DeletedCount == 0 {
		return errorz.ErrNotFound
	}

	return nil
}

// ExistingIDs reports which of ids refer to stored properties.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	m, err := s.gw.Model(ctx, db.Properties)
	if err != nil {
		return nil, err
	}

	var filter db.Filter
	oids := make([]any, 0, len(ids))
	for _, raw := range ids {
		id, err := db.ObjectID(raw)
		if err != nil {
			continue
		}
		oids = append(oids, id)
	}

	out := make(map[string]bool, len(ids))
	if len(oids) == 0 {
		return out, nil
	}
	filter.In("_id", oids...)

	cur, err := m.Coll.Find(ctx, filter.D(), options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	for _, d := range docs {
		out[d.ID.Hex()] = true
	}

	return out, nil
}

func ownedBy(id, owner string) (bson.D, error) {
	oid, err := db.ObjectID(id)
	if err != nil {
		return nil, err
	}

	ownerID, err := db.ObjectID(owner)
	if err != nil {
		return nil, err
	}

	var f db.Filter
	f.Eq("_id", oid).Eq("owner", ownerID)
	return f.D(), nil
}

func toDoc(p property.Property) (propertyDoc, error) {
	id, err := db.ObjectID(p.ID)
	if err != nil {
		return propertyDoc{}, err
	}

	owner, err := db.ObjectID(p.Owner)
	if err != nil {
		return propertyDoc{}, err
	}

	return propertyDoc{
		ID:          id,
		Owner:       owner,
		Address:     p.Address,
		Price:       p.Price,
		Description: p.Description,
		Location: locationDoc{
			Type:        p.Location.Type,
			Coordinates: p.Location.Coordinates[:],
		},
		Specification: specificationDoc(p.Specification),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func (d propertyDoc) toProperty() property.Property {
	var coords [2]float64
	copy(coords[:], d.Location.Coordinates)

	return property.Property{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		Address:     d.Address,
		Price:       d.Price,
		Description: d.Description,
		Location: property.Location{
			Type:        d.Location.Type,
			Coordinates: coords,
		},
		Specification: property.Specification(d.Specification),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}
