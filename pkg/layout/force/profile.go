package force

import (
	"fmt"
	"strings"
)

// Profile names an iteration budget and cooling rate.
type Profile string

const (
	ProfileDefault Profile = "default"
	ProfileQuick   Profile = "quick"
	ProfilePrecise Profile = "precise"
)

type profileParams struct {
	iterations int
	cooling    float64
}

var profiles = map[Profile]profileParams{
	ProfileDefault: {300, 0.985},
	ProfileQuick:   {150, 0.97},
	ProfilePrecise: {500, 0.991},
}

// Profiles lists the known profile names.
func Profiles() []Profile {
	return []Profile{ProfileDefault, ProfileQuick, ProfilePrecise}
}

// ParseProfile resolves a profile name. The empty string is the default.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProfileDefault, nil
	}
	if _, ok := profiles[p]; !ok {
		return "", fmt.Errorf("unknown force profile %q", s)
	}
	return p, nil
}

// ProfileConfig returns [DefaultConfig] with the iteration count and cooling
// factor of p. Unknown profiles fall back to the default.
func ProfileConfig(p Profile) Config {
	cfg := DefaultConfig()
	pp, ok := profiles[p]
	if !ok {
		pp = profiles[ProfileDefault]
	}
	cfg.Iterations = pp.iterations
	cfg.Cooling = pp.cooling
	return cfg
}
