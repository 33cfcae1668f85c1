package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/willemschots/tuffyestates/internal/db/testdb"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/property"
	propertydb "github.com/willemschots/tuffyestates/internal/property/db"
)

const (
	owner = "5bd3ddfdf20ff91132255496"
	other = "5bd3ddfdf20ff91132255497"
)

func Test_Store_Properties(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := propertydb.New(testdb.RunWhile(t), func() time.Time { return now })
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for i, price := range []int{100000, 200000, 300000} {
		p := testProperty(store.NewID())
		p.Price = price
		p.Specification.Bedrooms = i + 1
		require.NoError(t, store.Create(ctx, &p))
		require.Equal(t, now, p.CreatedAt)
		ids = append(ids, p.ID)
	}

	t.Run("ok, find all in id order", func(t *testing.T) {
		got, err := store.Find(ctx, &property.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, p := range got {
			require.Equal(t, ids[i], p.ID)
		}
		require.Equal(t, [2]float64{39.78, -89.65}, got[0].Location.Coordinates)
		require.Equal(t, now, got[0].CreatedAt)
	})

	t.Run("ok, query bounds", func(t *testing.T) {
		minPrice, minBedrooms := 150000, 3
		got, err := store.Find(ctx, &property.Filter{Query: property.Query{
			PriceMin:    &minPrice,
			MinBedrooms: &minBedrooms,
		}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, ids[2], got[0].ID)
	})

	t.Run("ok, offset and limit", func(t *testing.T) {
		got, err := store.Find(ctx, &property.Filter{Query: property.Query{Offset: 1, Limit: 1}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, ids[1], got[0].ID)
	})

	t.Run("ok, malformed id matches nothing", func(t *testing.T) {
		got, err := store.Find(ctx, &property.Filter{IDs: []string{"nope"}})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("ok, existing ids", func(t *testing.T) {
		got, err := store.ExistingIDs(ctx, []string{ids[0], "000000000000000000000000", "nope"})
		require.NoError(t, err)
		require.Equal(t, map[string]bool{ids[0]: true}, got)
	})

	t.Run("ok, update", func(t *testing.T) {
		desc := "Renovated"
		err := store.Update(ctx, property.Patch{ID: ids[0], Owner: owner, Description: &desc})
		require.NoError(t, err)

		got, err := store.Find(ctx, &property.Filter{IDs: ids[:1]})
		require.NoError(t, err)
		require.Equal(t, desc, got[0].Description)
		require.Equal(t, 100000, got[0].Price)
	})

	t.Run("fail, update by other owner", func(t *testing.T) {
		price := 1
		err := store.Update(ctx, property.Patch{ID: ids[0], Owner: other, Price: &price})
		require.True(t, errors.Is(err, errorz.ErrNotFound), "got %v", err)
	})

	t.Run("fail, update violates storage check", func(t *testing.T) {
		built := 1
		err := store.Update(ctx, property.Patch{
			ID:            ids[0],
			Owner:         owner,
			Specification: property.SpecificationPatch{Built: &built},
		})
		require.True(t, errors.Is(err, errorz.ErrConstraintViolated), "got %v", err)
	})

	t.Run("fail, delete by other owner", func(t *testing.T) {
		err := store.Delete(ctx, ids[1], other)
		require.True(t, errors.Is(err, errorz.ErrNotFound), "got %v", err)
	})

	t.Run("ok, delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, ids[1], owner))

		err := store.Delete(ctx, ids[1], owner)
		require.True(t, errors.Is(err, errorz.ErrNotFound), "got %v", err)
	})
}

func testProperty(id string) property.Property {
	return property.Property{
		ID:          id,
		Owner:       owner,
		Address:     "1 Main St, Springfield, USA",
		Price:       250000,
		Description: "A cozy home",
		Location: property.Location{
			Type:        "Point",
			Coordinates: [2]float64{39.78, -89.65},
		},
		Specification: property.Specification{
			Built:     1990,
			Lot:       0.25,
			Bedrooms:  3,
			Bathrooms: 2,
			Size:      1800,
		},
	}
}
