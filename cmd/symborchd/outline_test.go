package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegexOutlineFindsTopLevelDeclarations(t *testing.T) {
	src := "package foo\n\nfunc DoThing() {\n\treturn\n}\n\ntype Widget struct{}\n"

	nodes, err := regexOutline{}.Outline(context.Background(), "foo.go", src)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Equal(t, "DoThing", nodes[0].Name)
	require.Equal(t, "Widget", nodes[1].Name)
}

func TestRegexOutlineEmptyFileHasNoNodes(t *testing.T) {
	nodes, err := regexOutline{}.Outline(context.Background(), "empty.go", "")
	require.NoError(t, err)
	require.Empty(t, nodes)
}
