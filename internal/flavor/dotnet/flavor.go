// Package dotnet provides the .NET (System.Text.RegularExpressions)
// capability profile. .NET has unlimited variable-length lookbehind
// (as does JS in this table) but forbids supplementary code points
// directly inside character classes.
package dotnet

import "github.com/pomsky-lang/pomsky-go/internal/flavor"

// DotNet is the capability profile for .NET regular expressions.
type DotNet struct{}

func init() {
	flavor.Register(&DotNet{})
}

func (d *DotNet) Name() flavor.Name { return flavor.DotNet }

func (d *DotNet) Capabilities() flavor.Capabilities {
	return flavor.Capabilities{
		Lookahead:                  true,
		Lookbehind:                 true,
		LookbehindUnlimited:        true,
		AtomicGroups:               true,
		NamedGroups:                true,
		NumberedGroups:             true,
		MixedGroupReferences:       true,
		Recursion:                  false,
		UnicodeProperties:          true,
		ScriptExtensions:           false,
		GraphemeCluster:            false,
		SupplementaryCodePoints:    false,
		BackreferenceToOpenGroup:   false,
		ForwardReferences:          true,
		RepeatedZeroWidthAssertion: true,
		NativeWordBoundaryUnicode:  false,
		Backreferences:             true,
	}
}
