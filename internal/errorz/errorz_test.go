package errorz_test

import (
	"errors"
	"testing"

	"github.com/willemschots/tuffyestates/internal/errorz"
	"go.mongodb.org/mongo-driver/mongo"
)

func Test_MapDBErr(t *testing.T) {
	other := errors.New("other")

	tests := map[string]struct {
		err  error
		want error
	}{
		"nil": {
			err:  nil,
			want: nil,
		},
		"no documents": {
			err:  mongo.ErrNoDocuments,
			want: errorz.ErrNotFound,
		},
		"duplicate key": {
			err: mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}},
			},
			want: errorz.ErrDuplicate,
		},
		"validation failure": {
			err: mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}},
			},
			want: errorz.ErrConstraintViolated,
		},
		"other error": {
			err:  other,
			want: other,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := errorz.MapDBErr(tc.err)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}

			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v via errors.Is, got %v", tc.want, got)
			}
		})
	}
}

func Test_MapDBErr_Duplicate(t *testing.T) {
	dup := errorz.MapDBErr(mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}},
	})
	if !errors.Is(dup, errorz.ErrConstraintViolated) {
		t.Errorf("expected duplicate to also be a constraint violation, got %v", dup)
	}

	invalid := errorz.MapDBErr(mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}},
	})
	if errors.Is(invalid, errorz.ErrDuplicate) {
		t.Errorf("expected validation failure not to be a duplicate, got %v", invalid)
	}
}

func Test_Public(t *testing.T) {
	err := errorz.NewPublic("Property not found", errorz.ErrNotFound)

	if err.Error() != "Property not found" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if !errors.Is(err, errorz.ErrNotFound) {
		t.Errorf("expected public error to wrap errorz.ErrNotFound")
	}
}

func Test_InvalidInput(t *testing.T) {
	target := errors.New("too small")
	err := errorz.InvalidInput{
		errorz.Keyed{Key: "price", Err: target},
		errorz.Keyed{Key: "specification.size", Err: errors.New("missing")},
	}

	want := "invalid input: price: too small; specification.size: missing"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, target) {
		t.Errorf("expected wrapped error to be found via errors.Is")
	}
}
