package style

import (
	"slices"
	"strings"
	"sync"
)

// Recorder is an in-memory Sink that keeps declarations in first-set order.
// It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	props []Property
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetProperty sets or overwrites a declaration. An overwritten declaration keeps its position.
func (r *Recorder) SetProperty(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.props {
		if r.props[i].Name == name {
			r.props[i].Value = value
			return
		}
	}
	r.props = append(r.props, Property{Name: name, Value: value})
}

// RemoveProperty deletes a declaration. Missing names are ignored.
func (r *Recorder) RemoveProperty(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.props = slices.DeleteFunc(r.props, func(p Property) bool {
		return p.Name == name
	})
}

// Get returns the value of a declaration.
func (r *Recorder) Get(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Properties returns a copy of the declarations.
func (r *Recorder) Properties() []Property {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.props)
}

// Len returns the number of declarations.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.props)
}

// Rule renders the declarations as a CSS rule for selector.
// An empty Recorder renders as an empty string.
func (r *Recorder) Rule(selector string) string {
	props := r.Properties()
	if len(props) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, p := range props {
		b.WriteString("  ")
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Value)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
