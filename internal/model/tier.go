package model

import (
	"fmt"
	"strings"
)

// Tier is the service class a vehicle belongs to.  Each tier owns an
// isolated seat, reservation and waiting-queue space; nothing is shared
// or compared across tiers.
type Tier string

const (
	TierStandard Tier = "standard"
	TierVIP      Tier = "vip"
)

// Tiers lists every tier in a stable order (standard first).
var Tiers = []Tier{TierStandard, TierVIP}

// ParseTier converts user input such as "VIP" or " standard " into a Tier.
// An empty string maps to TierStandard.
func ParseTier(raw string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "standard", "std":
		return TierStandard, nil
	case "vip":
		return TierVIP, nil
	}
	return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidArgument, raw)
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool { return t == TierStandard || t == TierVIP }

func (t Tier) String() string { return string(t) }
