package db_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/willemschots/tuffyestates/internal/db"
)

func Test_Filter(t *testing.T) {
	tests := map[string]struct {
		build func(f *db.Filter)
		want  bson.D
	}{
		"empty": {
			build: func(f *db.Filter) {},
			want:  bson.D{},
		},
		"eq": {
			build: func(f *db.Filter) { f.Eq("owner", "a") },
			want:  bson.D{{Key: "owner", Value: "a"}},
		},
		"range on one key": {
			build: func(f *db.Filter) { f.Gte("price", 10).Lte("price", 20) },
			want: bson.D{{Key: "price", Value: bson.D{
				{Key: "$gte", Value: 10},
				{Key: "$lte", Value: 20},
			}}},
		},
		"conditions on multiple keys": {
			build: func(f *db.Filter) {
				f.Gte("price", 10).Gte("specification.bedrooms", 2).Lte("price", 20)
			},
			want: bson.D{
				{Key: "price", Value: bson.D{
					{Key: "$gte", Value: 10},
					{Key: "$lte", Value: 20},
				}},
				{Key: "specification.bedrooms", Value: bson.D{{Key: "$gte", Value: 2}}},
			},
		},
		"in": {
			build: func(f *db.Filter) { f.In("email", "a@example.com", "b@example.com") },
			want: bson.D{{Key: "email", Value: bson.D{
				{Key: "$in", Value: bson.A{"a@example.com", "b@example.com"}},
			}}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var f db.Filter
			tc.build(&f)
			require.Equal(t, tc.want, f.D())
		})
	}
}

func Test_ObjectID(t *testing.T) {
	id := db.NewID()
	require.Len(t, id, 24)

	oid, err := db.ObjectID(id)
	require.NoError(t, err)
	require.Equal(t, id, oid.Hex())

	_, err = db.ObjectID("nope")
	require.Error(t, err)
}
