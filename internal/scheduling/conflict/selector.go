package conflict

import (
	"errors"
	"strings"
)

// ErrAmbiguousSelector is returned when a request names both a specialist and
// a physical resource. Combined bindings are not supported.
var ErrAmbiguousSelector = errors.New("a booking may bind a specialist or a resource, not both")

// Kind tells which resource dimension a booking is bound to.
type Kind int

const (
	KindNone Kind = iota
	KindSpecialist
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindSpecialist:
		return "specialist"
	case KindResource:
		return "resource"
	default:
		return "time slot"
	}
}

// Selector is the tagged union {None, Specialist(id), Resource(id)}. The zero
// value is None.
type Selector struct {
	kind Kind
	id   string
}

func None() Selector {
	return Selector{kind: KindNone}
}

func Specialist(id string) Selector {
	return Selector{kind: KindSpecialist, id: id}
}

func Resource(id string) Selector {
	return Selector{kind: KindResource, id: id}
}

// ParseSelector builds a Selector from the two optional ids of a request.
// Blank ids count as absent.
func ParseSelector(specialistID, resourceID string) (Selector, error) {
	specialistID = strings.TrimSpace(specialistID)
	resourceID = strings.TrimSpace(resourceID)

	switch {
	case specialistID != "" && resourceID != "":
		return Selector{}, ErrAmbiguousSelector
	case resourceID != "":
		return Resource(resourceID), nil
	case specialistID != "":
		return Specialist(specialistID), nil
	default:
		return None(), nil
	}
}

func (s Selector) Kind() Kind {
	return s.kind
}

func (s Selector) ID() string {
	return s.id
}

func (s Selector) IsNone() bool {
	return s.kind == KindNone
}

func (s Selector) IsSpecialist() bool {
	return s.kind == KindSpecialist
}

func (s Selector) IsResource() bool {
	return s.kind == KindResource
}

// SpecialistID is the bound specialist or "".
func (s Selector) SpecialistID() string {
	if s.kind == KindSpecialist {
		return s.id
	}

	return ""
}

// ResourceID is the bound resource or "".
func (s Selector) ResourceID() string {
	if s.kind == KindResource {
		return s.id
	}

	return ""
}

// Key identifies the resource dimension, e.g. "specialist:42" or "none".
func (s Selector) Key() string {
	switch s.kind {
	case KindSpecialist:
		return "specialist:" + s.id
	case KindResource:
		return "resource:" + s.id
	default:
		return "none"
	}
}

func (s Selector) String() string {
	return s.Key()
}
