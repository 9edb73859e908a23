// Package js provides the JavaScript (ECMAScript 2018+) capability
// profile. JS lacks atomic groups and recursion entirely and has no
// native grapheme cluster class.
package js

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// JS is the capability profile for ECMAScript regular expressions.
type JS struct{}

func init() {
	flavor.Register(&JS{})
}

func (j *JS) Name() flavor.Name { return flavor.JS }

func (j *JS) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        true,
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
		ForwardReferences:          true,
		RepeatedZeroWidthAssertion: false,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             true,
	}
}
