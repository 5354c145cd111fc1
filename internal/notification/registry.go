package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownType     = errors.New("unknown notification type")
	ErrDuplicateType   = errors.New("duplicate notification type")
	ErrInvalidEntry    = errors.New("invalid notification type entry")
	ErrInvalidMetadata = errors.New("invalid notification metadata")
)

// Generator produces display text from a notification's metadata. It must be
// pure: no I/O and no access to live wishlist or claim state.
type Generator func(metadata json.RawMessage) (string, error)

// ViewFunc produces the type-specific part of a notification's view.
type ViewFunc func(metadata json.RawMessage) (View, error)

// Entry binds a notification type to its title, message and view.
type Entry struct {
	Type    Type
	Title   Generator
	Message Generator
	View    ViewFunc
}

// Define builds an Entry whose generators work on a typed metadata payload M.
// Decoding happens once per generator call; a payload that does not decode
// into M yields ErrInvalidMetadata.
func Define[M any](t Type, title func(M) string, message func(M) string, view func(M) View) Entry {
	return Entry{
		Type: t,
		Title: func(raw json.RawMessage) (string, error) {
			m, err := decodeMetadata[M](raw)
			if err != nil {
				return "", err
			}
			return title(m), nil
		},
		Message: func(raw json.RawMessage) (string, error) {
			m, err := decodeMetadata[M](raw)
			if err != nil {
				return "", err
			}
			return message(m), nil
		},
		View: func(raw json.RawMessage) (View, error) {
			m, err := decodeMetadata[M](raw)
			if err != nil {
				return View{}, err
			}
			return view(m), nil
		},
	}
}

func decodeMetadata[M any](raw json.RawMessage) (M, error) {
	var m M
	if len(raw) == 0 || string(raw) == "null" {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return m, nil
}

// Registry maps notification types to their entries. It is built once at
// startup and never modified, so concurrent readers need no locking.
type Registry struct {
	entries map[Type]Entry
}

// NewRegistry builds a Registry from entries. Empty or duplicate types and
// entries with missing functions are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	m := make(map[Type]Entry, len(entries))
	for _, e := range entries {
		if e.Type == "" || e.Title == nil || e.Message == nil || e.View == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEntry, e.Type)
		}
		if _, exists := m[e.Type]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateType, e.Type)
		}
		m[e.Type] = e
	}
	return &Registry{entries: m}, nil
}

// MustNewRegistry is like NewRegistry but panics on error
func MustNewRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the entry for t or ErrUnknownType
func (r *Registry) Lookup(t Type) (Entry, error) {
	e, ok := r.entries[t]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return e, nil
}

// Has reports whether t is registered
func (r *Registry) Has(t Type) bool {
	_, ok := r.entries[t]
	return ok
}

// Types returns the registered types in sorted order
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
