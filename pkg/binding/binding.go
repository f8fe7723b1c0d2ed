package binding

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies where a parameter takes its value from.
type Kind int

const (
	// KindNone marks a parameter without a binding. It always receives nil.
	KindNone Kind = iota
	// KindProjection binds a named projection value referenced by a
	// <name> placeholder in the step text.
	KindProjection
	// KindGroup binds a capture group of the declared pattern by index.
	KindGroup
	// KindAssigned binds the value matched at the position of a <name>
	// placeholder of the declared pattern.
	KindAssigned
)

// ErrMultipleBindings is returned by Single when a parameter carries more
// than one binding marker.
var ErrMultipleBindings = errors.New("parameter has more than one binding")

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindProjection:
		return "projection"
	case KindGroup:
		return "group"
	case KindAssigned:
		return "assigned"
	default:
		return "unknown"
	}
}

// Binding tells the binder how to resolve a single parameter. The zero value
// is Unbound.
type Binding struct {
	kind  Kind
	name  string
	index int
}

// Unbound is the binding of a parameter that receives no value.
var Unbound = Binding{}

// Projection binds a parameter to the projection value called name.
func Projection(name string) Binding {
	return Binding{kind: KindProjection, name: name}
}

// Group binds a parameter to capture group index of the declared pattern.
// Index 0 is the whole match.
func Group(index int) Binding {
	return Binding{kind: KindGroup, index: index}
}

// Assigned binds a parameter to the value matched in place of the <name>
// placeholder of the declared pattern.
func Assigned(name string) Binding {
	return Binding{kind: KindAssigned, name: name}
}

// Kind returns the binding kind.
func (b Binding) Kind() Kind {
	return b.kind
}

// Name returns the projection or assignment name.
func (b Binding) Name() string {
	return b.name
}

// Index returns the capture group index of a Group binding.
func (b Binding) Index() int {
	return b.index
}

func (b Binding) String() string {
	switch b.kind {
	case KindProjection, KindAssigned:
		return fmt.Sprintf("%s(%s)", b.kind, b.name)
	case KindGroup:
		return fmt.Sprintf("%s(%d)", b.kind, b.index)
	default:
		return b.kind.String()
	}
}

// Select returns the marker with the highest precedence among markers:
// projection, then group, then assigned. Unbound is returned when no marker
// is bound.
func Select(markers ...Binding) Binding {
	selected := Unbound
	for _, marker := range markers {
		if marker.kind == KindNone {
			continue
		}
		if selected.kind == KindNone || marker.kind < selected.kind {
			selected = marker
		}
	}
	return selected
}

// Single returns the only bound marker of markers, or ErrMultipleBindings
// when more than one is bound.
func Single(markers ...Binding) (Binding, error) {
	selected := Unbound
	for _, marker := range markers {
		if marker.kind == KindNone {
			continue
		}
		if selected.kind != KindNone {
			return Unbound, fmt.Errorf("%w: %s and %s", ErrMultipleBindings, selected, marker)
		}
		selected = marker
	}
	return selected, nil
}

// Parse reads the text form of a marker: projection:<name>, group:<index>
// or assigned:<name>.
func Parse(marker string) (Binding, error) {
	kind, value, ok := strings.Cut(marker, ":")
	if !ok || value == "" {
		return Unbound, fmt.Errorf("invalid binding %q", marker)
	}

	switch kind {
	case "projection":
		return Projection(value), nil
	case "assigned":
		return Assigned(value), nil
	case "group":
		index, err := strconv.Atoi(value)
		if err != nil || index < 0 {
			return Unbound, fmt.Errorf("invalid group index %q", value)
		}
		return Group(index), nil
	default:
		return Unbound, fmt.Errorf("unknown binding kind %q", kind)
	}
}

// Param is a declared parameter of a step method.
type Param struct {
	Type    reflect.Type
	Binding Binding
}
