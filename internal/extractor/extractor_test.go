package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/notifygen/internal/syntax"
)

const sampleSource = `using System;
using Col = System.Collections.Generic;

namespace ConsoleApplication1
{
    partial class Sample<T>
    {
        struct NotifyRecord
        {
            public int X;
            public int Y;
            /// <summary>Label.</summary>
            public string W; // title
            public int Z => X * Y;
        }
    }
}
`

func extract(t *testing.T, src string) FileFacts {
	t.Helper()
	facts, err := New().Extract(context.Background(), "Sample.cs", []byte(src))
	require.NoError(t, err)
	return facts
}

func TestExtract(t *testing.T) {
	t.Run("Should find the record and its chain", func(t *testing.T) {
		facts := extract(t, sampleSource)
		assert.False(t, facts.Skipped)
		assert.False(t, facts.HasErrors)
		require.Len(t, facts.Candidates, 1)

		cand := facts.Candidates[0]
		assert.Equal(t, "NotifyRecord", cand.Name)
		assert.Equal(t, 8, cand.Line)
		assert.Equal(t, "ConsoleApplication1", cand.Chain.Namespace)
		require.Len(t, cand.Chain.Containers, 1)
		c := cand.Chain.Containers[0]
		assert.Equal(t, "Sample", c.Name)
		assert.Equal(t, "class", c.Keyword)
		assert.Equal(t, []string{"T"}, c.TypeParams)
		assert.True(t, c.Partial)
		assert.Equal(t, "ConsoleApplication1.Sample<T>", cand.Chain.QualifiedName())
	})

	t.Run("Should collect usings in order", func(t *testing.T) {
		facts := extract(t, sampleSource)
		require.Len(t, facts.Usings, 2)
		assert.Equal(t, "System", facts.Usings[0].Name)
		assert.Equal(t, "Col", facts.Usings[1].Alias)
		assert.Equal(t, "System.Collections.Generic", facts.Usings[1].Name)
	})

	t.Run("Should lift comments into trivia", func(t *testing.T) {
		facts := extract(t, sampleSource)
		decl, ok := syntax.AsTypeDecl(facts.Candidates[0].Record)
		require.True(t, ok)
		var w *syntax.Node
		for _, m := range decl.Members() {
			if f, ok := syntax.AsField(m); ok && f.Names()[0] == "W" {
				w = m
			}
			assert.NotEqual(t, syntax.KindComment, m.Kind)
		}
		require.NotNil(t, w)
		assert.Equal(t, []string{"/// <summary>Label.</summary>"}, w.Leading.Comments)
		assert.Equal(t, []string{"// title"}, w.Trailing.Comments)
	})

	t.Run("Should follow nested types and file-scoped namespaces", func(t *testing.T) {
		facts := extract(t, `namespace Shop.Models;

public partial class Catalog
{
    public partial class Order<TKey, TValue>
    {
        struct NotifyRecord { public int Quantity; }
    }
}
`)
		require.Len(t, facts.Candidates, 1)
		chain := facts.Candidates[0].Chain
		assert.True(t, chain.FileScoped)
		assert.Equal(t, "Shop.Models", chain.Namespace)
		assert.Equal(t, "Order", chain.Innermost().Name)
		assert.Equal(t, "Catalog", chain.Outermost().Name)
		assert.Equal(t, "Shop.Models.Catalog.Order<TKey, TValue>", chain.QualifiedName())
		assert.Len(t, facts.Containers, 2)
	})

	t.Run("Should join nested block namespaces", func(t *testing.T) {
		facts := extract(t, `namespace Outer
{
    namespace Inner.Deep
    {
        partial class Host
        {
            struct NotifyRecord { public int A; }
        }
    }
}
`)
		require.Len(t, facts.Candidates, 1)
		assert.Equal(t, "Outer.Inner.Deep", facts.Candidates[0].Chain.Namespace)
	})

	t.Run("Should ignore markers outside a class", func(t *testing.T) {
		facts := extract(t, `namespace N
{
    struct NotifyRecord { public int A; }
    partial struct Host
    {
        struct NotifyRecord { public int B; }
    }
}
`)
		assert.Empty(t, facts.Candidates)
	})

	t.Run("Should report syntax errors without failing", func(t *testing.T) {
		facts := extract(t, `partial class Host
{
    struct NotifyRecord { public int A }
}
`)
		assert.True(t, facts.HasErrors)
	})
}

func TestPrefilter(t *testing.T) {
	t.Run("Should skip files without the marker", func(t *testing.T) {
		facts := extract(t, "global using System;\nusing static System.Math;\n\nnamespace N { class C { } }\nusing Late;\n")
		assert.True(t, facts.Skipped)
		assert.Nil(t, facts.Root)
		require.Len(t, facts.Usings, 2)
		assert.True(t, facts.Usings[0].Global)
		assert.True(t, facts.Usings[1].Static)
		assert.Equal(t, "System.Math", facts.Usings[1].Name)
	})

	t.Run("Should honour a custom marker", func(t *testing.T) {
		ext := New()
		ext.SetMarker("State")
		assert.Equal(t, "State", ext.Marker())
		facts, err := ext.Extract(context.Background(), "a.cs", []byte("partial class Host { struct State { public int A; } }"))
		require.NoError(t, err)
		require.Len(t, facts.Candidates, 1)
		assert.Equal(t, "State", facts.Candidates[0].Name)

		ext.SetMarker("")
		assert.Equal(t, "State", ext.Marker())
	})
}

func TestIsNotifyRecord(t *testing.T) {
	named := func(kind syntax.Kind, name string) *syntax.Node {
		id := &syntax.Node{Kind: syntax.KindIdentifier, Named: true, Field: "name", Text: name}
		return &syntax.Node{Kind: kind, Named: true, Children: []*syntax.Node{id}}
	}
	class := named(syntax.KindClass, "Host")

	t.Run("Should require a struct with the marker name inside a class", func(t *testing.T) {
		assert.True(t, IsNotifyRecord(named(syntax.KindStruct, "NotifyRecord"), class, DefaultMarker))
		assert.False(t, IsNotifyRecord(named(syntax.KindStruct, "Other"), class, DefaultMarker))
		assert.False(t, IsNotifyRecord(named(syntax.KindClass, "NotifyRecord"), class, DefaultMarker))
		assert.False(t, IsNotifyRecord(named(syntax.KindStruct, "NotifyRecord"), named(syntax.KindStruct, "Host"), DefaultMarker))
		assert.False(t, IsNotifyRecord(named(syntax.KindStruct, "NotifyRecord"), nil, DefaultMarker))
	})
}

func TestAddPartialModifiers(t *testing.T) {
	t.Run("Should insert partial on every non-partial container", func(t *testing.T) {
		src := `namespace N
{
    public class Outer
    {
        partial class Middle
        {
            internal sealed class Inner
            {
                struct NotifyRecord { public int A; }
            }
        }
    }
}
`
		facts := extract(t, src)
		require.Len(t, facts.Candidates, 1)

		out, fixed := AddPartialModifiers([]byte(src), facts.Candidates)
		require.Len(t, fixed, 2)
		assert.Equal(t, "Outer", fixed[0].Name)
		assert.Equal(t, "Inner", fixed[1].Name)
		assert.Contains(t, string(out), "public partial class Outer")
		assert.Contains(t, string(out), "internal sealed partial class Inner")
		assert.Contains(t, string(out), "        partial class Middle")

		again := extract(t, string(out))
		_, none := AddPartialModifiers(out, again.Candidates)
		assert.Empty(t, none)
	})
}
