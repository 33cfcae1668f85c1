package internal

import (
	"log/slog"
	"runtime/debug"
	"time"
)

// Build describes the binary, as stamped by the Go toolchain.
type Build struct {
	Revision      string
	RevisionTime  time.Time
	LocalModified bool
}

// CurrentBuild is read from the build info once at startup.
var CurrentBuild = readBuild()

func readBuild() Build {
	b := Build{Revision: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.Revision = setting.Value
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, setting.Value)
			if err == nil {
				b.RevisionTime = t
			}
		case "vcs.modified":
			b.LocalModified = setting.Value == "true"
		}
	}

	return b
}

// Version is a short form of the revision, suffixed with -dirty for
// builds of a modified working tree.
func (b Build) Version() string {
	v := b.Revision
	if len(v) > 12 {
		v = v[:12]
	}
	if b.LocalModified {
		v += "-dirty"
	}
	return v
}

// LogValue groups the build attributes in log records.
func (b Build) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", b.Version()),
		slog.String("revision", b.Revision),
		slog.Time("revisionTime", b.RevisionTime),
		slog.Bool("localModified", b.LocalModified),
	)
}
