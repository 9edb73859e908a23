// Package pcre provides the PCRE2 capability profile. PCRE is the
// most feature-rich flavor in the table: it supports recursion, atomic
// groups, named and numbered groups together, and Unicode properties,
// but still bounds lookbehind length like most backtracking engines.
package pcre

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// PCRE is the capability profile for Perl Compatible Regular
// Expressions (PCRE2).
type PCRE struct{}

func init() {
	flavor.Register(&PCRE{})
}

func (f *PCRE) Name() flavor.Name { return flavor.PCRE }

func (f *PCRE) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        false,
		MaxLookbehindLength:        255,
		AtomicGroups:               true,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       true,
		Recursion:                  true,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            true,
		SupplementaryCodePoints:    true,
		BackreferenceToOpenGroup:   true,
		ForwardReferences:          true,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             true,
	}
}
