package db

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Filter builds a conjunctive query filter.
// The zero value is ready to use and matches every document.
type Filter struct {
	d bson.D
}

// Eq requires key to equal v.
func (f *Filter) Eq(key string, v any) *Filter {
	f.d = append(f.d, bson.E{Key: key, Value: v})
	return f
}

// In requires key to equal one of vs.
func (f *Filter) In(key string, vs ...any) *Filter {
	return f.op(key, "$in", bson.A(vs))
}

// Gte requires key to be greater than or equal to v.
func (f *Filter) Gte(key string, v any) *Filter {
	return f.op(key, "$gte", v)
}

// Lte requires key to be less than or equal to v.
func (f *Filter) Lte(key string, v any) *Filter {
	return f.op(key, "$lte", v)
}

// op adds an operator condition. Conditions on the same key are combined
// into a single operator document.
func (f *Filter) op(key, op string, v any) *Filter {
	for i, e := range f.d {
		if e.Key != key {
			continue
		}
		if ops, ok := e.Value.(bson.D); ok {
			f.d[i].Value = append(ops, bson.E{Key: op, Value: v})
			return f
		}
	}

	f.d = append(f.d, bson.E{Key: key, Value: bson.D{{Key: op, Value: v}}})
	return f
}

// D returns the filter document.
func (f *Filter) D() bson.D {
	if f.d == nil {
		return bson.D{}
	}
	return f.d
}
