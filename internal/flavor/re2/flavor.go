// Package re2 provides the Google RE2 capability profile. Like Rust's
// regex crate, RE2 guarantees linear-time matching and therefore omits
// lookaround, backreferences, and recursion; it additionally lacks
// named-and-numbered mixed references.
package re2

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// RE2 is the capability profile for Google's RE2 engine.
type RE2 struct{}

func init() {
	flavor.Register(&RE2{})
}

func (r *RE2) Name() flavor.Name { return flavor.RE2 }

func (r *RE2) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  false,
		Lookbehind:                 false,
		AtomicGroups:               false,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       false,
		Recursion:                  false,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            false,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          false,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             false,
	}
}
