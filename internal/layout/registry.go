// Package layout maps layout files of presentation templates to the Go
// types describing their content.
//
// Layout packages register themselves from init(), so the registry is
// complete once the binary has started.
package layout

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Definition describes one layout file of a template.
type Definition struct {
	// Template is the template directory name, e.g. "classic".
	Template string
	// File is the layout file name inside the template directory, e.g. "Cover.tsx".
	File string
	// Schema is the content type converted to JSON Schema. A nil Schema
	// marks a layout without structured content; the generator skips it.
	Schema reflect.Type

	// Optional metadata. Empty values fall back to names derived from File.
	ID          string
	Name        string
	Description string
}

// Meta holds the optional metadata of a layout.
type Meta struct {
	ID          string
	Name        string
	Description string
}

// Define returns a Definition whose schema is the type T.
func Define[T any](template, file string, meta Meta) Definition {
	return Definition{
		Template:    template,
		File:        file,
		Schema:      reflect.TypeFor[T](),
		ID:          meta.ID,
		Name:        meta.Name,
		Description: meta.Description,
	}
}

// Resolved returns the layout id, name and description, applying the
// filename fallbacks for missing metadata.
func (d Definition) Resolved() Meta {
	m := Meta{ID: d.ID, Name: d.Name, Description: d.Description}
	if m.ID == "" {
		m.ID = DeriveID(d.File)
	}
	if m.Name == "" {
		m.Name = DeriveName(d.File)
	}
	return m
}

type key struct{ template, file string }

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]Definition
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]Definition)}
}

// Register adds def. Registering the same template and file twice is an error.
func (r *Registry) Register(def Definition) error {
	if def.Template == "" || def.File == "" {
		return fmt.Errorf("layout registration requires template and file (got %q, %q)", def.Template, def.File)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{def.Template, def.File}
	if _, dup := r.entries[k]; dup {
		return fmt.Errorf("layout %s/%s already registered", def.Template, def.File)
	}
	r.entries[k] = def
	return nil
}

func (r *Registry) Lookup(template, file string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.entries[key{template, file}]
	return def, ok
}

// Templates returns the sorted names of templates with at least one layout.
func (r *Registry) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range r.entries {
		seen[k.template] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Layouts returns the definitions of one template sorted by file name.
func (r *Registry) Layouts(template string) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var defs []Definition
	for k, def := range r.entries {
		if k.template == template {
			defs = append(defs, def)
		}
	}
	slices.SortFunc(defs, func(a, b Definition) int {
		return strings.Compare(a.File, b.File)
	})
	return defs
}

// Default is the process-wide registry populated by layout packages.
var Default = NewRegistry()

// Register adds def to Default. Must be called from init(); it panics on a
// duplicate or incomplete registration.
func Register(def Definition) {
	if err := Default.Register(def); err != nil {
		panic(err)
	}
}
