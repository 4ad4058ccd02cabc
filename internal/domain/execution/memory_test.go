package execution

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_ChildScopesFallThrough(t *testing.T) {
	t.Parallel()

	root := NewMemory()
	root.Declare("x", Binding{Kind: "number", Value: 1.0})

	child := root.Child()
	child.Declare("y", Binding{Kind: "string", Value: "hi"})

	b, ok := child.Lookup("x")
	require.True(t, ok)
	require.Equal(t, 1.0, b.Value)

	_, ok = root.Lookup("y")
	require.False(t, ok, "child declarations must not leak into the parent")

	require.True(t, child.Assign("x", 2.0))
	b, _ = root.Lookup("x")
	require.Equal(t, 2.0, b.Value)

	require.False(t, child.Assign("missing", 1.0))
	require.Equal(t, []string{"x", "y"}, child.Names())
	require.Same(t, root, child.Parent())
}

func TestMemory_DeclaredIgnoresParents(t *testing.T) {
	t.Parallel()

	root := NewMemory()
	root.Declare("x", Binding{Kind: "number", Value: 1.0})
	child := root.Child()

	require.True(t, root.Declared("x"))
	require.False(t, child.Declared("x"))
}
