package internal_test

import (
	"testing"

	"github.com/willemschots/tuffyestates/internal"
)

func Test_Build_Version(t *testing.T) {
	tests := map[string]struct {
		build internal.Build
		want  string
	}{
		"unknown": {
			build: internal.Build{Revision: "unknown"},
			want:  "unknown",
		},
		"long revision is shortened": {
			build: internal.Build{Revision: "0123456789abcdef0123456789abcdef01234567"},
			want:  "0123456789ab",
		},
		"modified": {
			build: internal.Build{Revision: "0123456789abcdef", LocalModified: true},
			want:  "0123456789ab-dirty",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := tc.build.Version()
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
