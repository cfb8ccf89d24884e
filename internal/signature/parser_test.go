package signature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classSignatures = []string{
	"Ljava/lang/Object;",
	"<T:Ljava/lang/Object;>Ljava/lang/Object;",
	"<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/util/AbstractMap<TK;TV;>;Ljava/util/Map<TK;TV;>;Ljava/lang/Cloneable;",
	"<E:Ljava/lang/Enum<TE;>;>Ljava/lang/Object;Ljava/lang/Comparable<TE;>;Ljava/io/Serializable;",
	"<T::Ljava/lang/Comparable<-TT;>;>Ljava/lang/Object;",
	"<T:Ljava/lang/Number;:Ljava/lang/Runnable;:Ljava/io/Closeable;>LBase;",
	"Ljava/util/ArrayList<[[Ljava/lang/String;>;",
	"Lp/Outer<TT;>.Inner<TU;>.Deep;",
	"Ljava/util/List<*>;Ljava/util/Set<+[I>;",
	"<A:TB;B:Ljava/lang/Object;>Ljava/lang/Object;",
	"<X:[TX;>Lq/R;",
}

func TestParseClass_RoundTrip(t *testing.T) {
	for _, in := range classSignatures {
		t.Run(in, func(t *testing.T) {
			sig, err := ParseClass(in)
			require.NoError(t, err)
			printed := sig.String()
			assert.Equal(t, in, printed)

			again, err := ParseClass(printed)
			require.NoError(t, err)
			assert.True(t, EqualClass(sig, again), "re-parse of %q differs", printed)
		})
	}
}

func TestParseClass_Structure(t *testing.T) {
	sig, err := ParseClass("<K:Ljava/lang/Object;V::Ljava/lang/Runnable;>Lp/Outer<TK;>.Inner<+TV;>;Lp/I<*>;")
	require.NoError(t, err)

	require.Len(t, sig.TypeParams, 2)
	assert.Equal(t, "K", sig.TypeParams[0].Name)
	assert.Equal(t, "Ljava/lang/Object;", sig.TypeParams[0].ClassBound.String())
	assert.Nil(t, sig.TypeParams[1].ClassBound)
	require.Len(t, sig.TypeParams[1].InterfaceBounds, 1)

	require.NotNil(t, sig.Superclass)
	assert.Equal(t, "p", sig.Superclass.Package)
	require.Len(t, sig.Superclass.Segments, 2)
	assert.Equal(t, "Outer", sig.Superclass.Segments[0].Name)
	assert.Equal(t, "Inner", sig.Superclass.Segments[1].Name)
	assert.Equal(t, Extends, sig.Superclass.Segments[1].Args[0].Wildcard)
	assert.Equal(t, "p/Outer$Inner", sig.Superclass.BinaryName())

	require.Len(t, sig.Interfaces, 1)
	assert.Equal(t, Any, sig.Interfaces[0].Segments[0].Args[0].Wildcard)
	assert.Nil(t, sig.Interfaces[0].Segments[0].Args[0].Type)
	assert.True(t, sig.IsGeneric())
}

func TestParseType_ArrayDimensionsAccumulate(t *testing.T) {
	ts, err := ParseType("[[[Ljava/lang/String;")
	require.NoError(t, err)

	arr, ok := ts.(*ArrayType)
	require.True(t, ok, "expected *ArrayType, got %T", ts)
	assert.Equal(t, 3, arr.Dims)
	_, isArray := arr.Elem.(*ArrayType)
	assert.False(t, isArray, "element must not be an array")

	prim, err := ParseType("[[J")
	require.NoError(t, err)
	assert.Equal(t, &ArrayType{Dims: 2, Elem: Long}, prim)
}

func TestParseMethod(t *testing.T) {
	tests := []string{
		"()V",
		"<T:Ljava/lang/Object;>(TT;[I)TT;",
		"(Ljava/util/List<+Ljava/lang/Number;>;J)Z^Ljava/io/IOException;^TE;",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			sig, err := ParseMethod(in)
			require.NoError(t, err)
			assert.Equal(t, in, sig.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		fn   func(string) error
	}{
		{"empty class", "", func(s string) error { _, err := ParseClass(s); return err }},
		{"missing semicolon", "Ljava/lang/Object", func(s string) error { _, err := ParseClass(s); return err }},
		{"unterminated params", "<T:Ljava/lang/Object;", func(s string) error { _, err := ParseClass(s); return err }},
		{"empty type params", "<>Ljava/lang/Object;", func(s string) error { _, err := ParseClass(s); return err }},
		{"base type superclass", "I", func(s string) error { _, err := ParseClass(s); return err }},
		{"trailing garbage", "TT;x", func(s string) error { _, err := ParseType(s); return err }},
		{"bare base type", "I", func(s string) error { _, err := ParseType(s); return err }},
		{"void array", "[V", func(s string) error { _, err := ParseType(s); return err }},
		{"empty args", "Ljava/util/List<>;", func(s string) error { _, err := ParseType(s); return err }},
		{"bad wildcard target", "Ljava/util/List<+I>;", func(s string) error { _, err := ParseType(s); return err }},
		{"missing identifier", "L;", func(s string) error { _, err := ParseType(s); return err }},
		{"method without parens", "V", func(s string) error { _, err := ParseMethod(s); return err }},
		{"unterminated method", "(I", func(s string) error { _, err := ParseMethod(s); return err }},
		{"primitive throws", "()V^I", func(s string) error { _, err := ParseMethod(s); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.in)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.in, pe.Input)
			assert.GreaterOrEqual(t, pe.Offset, 0)
		})
	}
}

func TestParseClass_NoPartialResult(t *testing.T) {
	sig, err := ParseClass("<T:Ljava/lang/Object;>Ljava/lang/Object;Lbroken")
	assert.Error(t, err)
	assert.Nil(t, sig)
}
