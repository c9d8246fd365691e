package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
)

var registry = map[dynamo.Kind]func() dynamo.Stepper{
	dynamo.Euler: func() dynamo.Stepper { return NewEuler() },
	dynamo.RK4:   func() dynamo.Stepper { return NewRK4() },
}

// New returns the stepper for kind. An empty kind selects RK4.
func New(kind dynamo.Kind) (dynamo.Stepper, error) {
	if kind == "" {
		kind = dynamo.RK4
	}
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, kind)
	}
	return fn(), nil
}

// Kinds lists the registered stepping rules in name order.
func Kinds() []dynamo.Kind {
	kinds := make([]dynamo.Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
