package ast

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// IgnoreLocs is a cmp.Option that ignores the locations of Nodes.
var IgnoreLocs = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	return ok && sf.Name() == "location"
}, cmp.Ignore())

// Equal returns whether two Nodes are structurally equal,
// ignoring their locations.
func Equal(a, b Node) bool {
	return cmp.Equal(a, b, IgnoreLocs, cmpopts.EquateEmpty())
}
