// Package python provides the Python `re` module capability profile:
// fixed-width-only lookbehind, no atomic groups (before 3.11's
// possessive-quantifier-only addition, which this profile does not
// model), no recursion.
package python

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// Python is the capability profile for the standard library `re`
// module.
type Python struct{}

func init() {
	flavor.Register(&Python{})
}

func (p *Python) Name() flavor.Name { return flavor.Python }

func (p *Python) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        false,
		FixedWidthLookbehindOnly:   true,
		AtomicGroups:               false,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       true,
		Recursion:                  false,
		UnicodeProperties:          false,
		ScriptExtensions:           false,
		GraphemeCluster:            false,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          false,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  true,
		Backreferences:             true,
	}
}
