package seating

import (
	"fmt"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// Tiers routes requests to the engine of a tier.  Each engine owns its
// own storage, so an operation resolved through For never touches
// another tier.
type Tiers struct {
	engines map[model.Tier]*Engine
}

// NewTiers indexes engines by their tier.  Registering two engines for
// the same tier is a wiring bug and panics.
func NewTiers(engines ...*Engine) *Tiers {
	t := &Tiers{engines: make(map[model.Tier]*Engine, len(engines))}
	for _, e := range engines {
		if _, dup := t.engines[e.Tier()]; dup {
			panic(fmt.Sprintf("seating: duplicate engine for tier %q", e.Tier()))
		}
		t.engines[e.Tier()] = e
	}
	return t
}

// For returns the engine of tier.
func (t *Tiers) For(tier model.Tier) (*Engine, error) {
	e, ok := t.engines[tier]
	if !ok {
		return nil, fmt.Errorf("%w: tier %q is not served", model.ErrInvalidArgument, tier)
	}
	return e, nil
}

// All returns the registered engines in model.Tiers order.
func (t *Tiers) All() []*Engine {
	out := make([]*Engine, 0, len(t.engines))
	for _, tier := range model.Tiers {
		if e, ok := t.engines[tier]; ok {
			out = append(out, e)
		}
	}
	return out
}
