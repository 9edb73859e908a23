// Package ruby provides the Ruby (Onigmo/Oniguruma) capability
// profile. Ruby supports atomic groups and recursion, accepts only
// fixed-width lookbehind content, and, unlike PCRE, disallows forward
// references and captures inside lookaround.
package ruby

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// Ruby is the capability profile for Onigmo regular expressions.
type Ruby struct{}

func init() {
	flavor.Register(&Ruby{})
}

func (r *Ruby) Name() flavor.Name { return flavor.Ruby }

func (r *Ruby) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        false,
		FixedWidthLookbehindOnly:   true,
		AtomicGroups:               true,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       false,
		Recursion:                  true,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            true,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          false,
		RepeatedZeroWidthAssertion: false,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             true,
	}
}
