// Package java provides the java.util.regex.Pattern capability
// profile: fixed-width-only lookbehind, no recursion, Unicode
// properties via \p{...}.
package java

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// Java is the capability profile for java.util.regex.Pattern.
type Java struct{}

func init() {
	flavor.Register(&Java{})
}

func (j *Java) Name() flavor.Name { return flavor.Java }

func (j *Java) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        false,
		FixedWidthLookbehindOnly:   true,
		AtomicGroups:               true,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       true,
		Recursion:                  false,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            false,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          true,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             true,
	}
}
