// Package rust provides the Rust `regex` crate capability profile.
// The crate guarantees linear-time matching, so it has no lookaround,
// no backreferences, and no recursion at all.
package rust

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// Rust is the capability profile for the Rust `regex` crate.
type Rust struct{}

func init() {
	flavor.Register(&Rust{})
}

func (r *Rust) Name() flavor.Name { return flavor.Rust }

func (r *Rust) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  false,
		Lookbehind:                 false,
		AtomicGroups:               false,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       true,
		Recursion:                  false,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            false,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          false,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  true,
		Backreferences:             false,
	}
}
