package property

import "context"

// Filter is used to filter properties.
// Returned properties must match all the provided fields.
// If a field is empty or nil, it's ignored.
type Filter struct {
	IDs   []string
	Owner string
	Query
}

// Store provides access to the property store.
type Store interface {
	// NewID allocates a property ID.
	NewID() string
	// Create stores a property with a preallocated ID and sets its timestamps.
	Create(ctx context.Context, p *Property) error
	// Find returns matching properties ordered by ID.
	Find(ctx context.Context, f *Filter) ([]Property, error)
	// Update applies the patch if the property belongs to patch.Owner,
	// otherwise it returns errorz.ErrNotFound.
	Update(ctx context.Context, patch Patch) error
	// Delete removes the property if it belongs to owner,
	// otherwise it returns errorz.ErrNotFound.
	Delete(ctx context.Context, id, owner string) error
}
