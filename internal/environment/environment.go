// Package environment models the runtime environment a registration pass
// executes against: active profiles that gate document subtrees, and a
// property chain used to expand ${...} placeholders in locations.
package environment

import (
	"os"
	"strings"

	"github.com/loomkit/loom/internal/log"
)

// ReservedDefaultProfile is the profile considered active when no explicit
// profiles have been activated.
const ReservedDefaultProfile = "default"

// Environment holds profile state and the property lookup chain.
// Explicit properties take precedence over OS environment variables.
type Environment struct {
	activeProfiles  []string
	defaultProfiles []string
	properties      map[string]string
	useOSEnv        bool
}

// Option configures an Environment.
type Option func(*Environment)

// WithActiveProfiles sets the active profiles.
func WithActiveProfiles(profiles ...string) Option {
	return func(e *Environment) { e.activeProfiles = dedupe(profiles) }
}

// WithDefaultProfiles overrides the default profile set used when no
// profiles are active.
func WithDefaultProfiles(profiles ...string) Option {
	return func(e *Environment) { e.defaultProfiles = dedupe(profiles) }
}

// WithProperties adds explicit properties to the lookup chain.
func WithProperties(props map[string]string) Option {
	return func(e *Environment) {
		for k, v := range props {
			e.properties[k] = v
		}
	}
}

// WithoutOSEnvironment disables the OS environment fallback. Used by tests
// that need hermetic property resolution.
func WithoutOSEnvironment() Option {
	return func(e *Environment) { e.useOSEnv = false }
}

// New creates an Environment with the given options applied.
func New(opts ...Option) *Environment {
	e := &Environment{
		defaultProfiles: []string{ReservedDefaultProfile},
		properties:      make(map[string]string),
		useOSEnv:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveProfiles returns the active profile names.
func (e *Environment) ActiveProfiles() []string {
	return e.activeProfiles
}

// SetActiveProfiles replaces the active profile set.
func (e *Environment) SetActiveProfiles(profiles ...string) {
	e.activeProfiles = dedupe(profiles)
}

// Property returns the value for key from the property chain and whether it
// was found.
func (e *Environment) Property(key string) (string, bool) {
	if v, ok := e.properties[key]; ok {
		return v, true
	}
	if e.useOSEnv {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
	}
	return "", false
}

// AcceptsProfiles reports whether at least one of the given profile names is
// satisfied. A name prefixed with '!' is satisfied when that profile is NOT
// active. When no profiles are active, the default profile set is consulted.
func (e *Environment) AcceptsProfiles(profiles ...string) bool {
	if len(profiles) == 0 {
		return true
	}
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "!") {
			if !e.isActive(p[1:]) {
				return true
			}
			continue
		}
		if e.isActive(p) {
			return true
		}
	}
	log.Debug(log.CatEnv, "no profile in %v matches active set %v", profiles, e.activeProfiles)
	return false
}

func (e *Environment) isActive(profile string) bool {
	set := e.activeProfiles
	if len(set) == 0 {
		set = e.defaultProfiles
	}
	for _, p := range set {
		if p == profile {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
