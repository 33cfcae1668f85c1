package view

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/willemschots/tuffyestates/internal/email"
)

// FSRenderer renders email templates found in a file system.
// Parsed views are cached by name.
type FSRenderer struct {
	fs fs.FS

	mu    sync.Mutex
	views map[string]*View
}

func NewFSRenderer(fs fs.FS) *FSRenderer {
	return &FSRenderer{
		fs:    fs,
		views: make(map[string]*View),
	}
}

// Preload parses the named views up front, so broken templates are
// found when the process starts instead of when an email is sent.
func (r *FSRenderer) Preload(names ...string) error {
	var errs []error
	for _, name := range names {
		_, err := r.view(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse view %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *FSRenderer) Render(w io.Writer, name string, element email.TemplateElement, data any) error {
	v, err := r.view(name)
	if err != nil {
		return err
	}

	return v.Render(w, element, data)
}

func (r *FSRenderer) view(name string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[name]; ok {
		return v, nil
	}

	v, err := Parse(r.fs, name)
	if err != nil {
		return nil, err
	}

	r.views[name] = v
	return v, nil
}
