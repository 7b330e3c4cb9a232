package xpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/midbel/xee/xml"
	"github.com/stretchr/testify/require"
)

func TestQueryEval(t *testing.T) {
	tests := []struct {
		Expr string
		Want []string
	}{
		{Expr: "1 + 2", Want: []string{"3"}},
		{Expr: "2 + 3.5", Want: []string{"5.5"}},
		{Expr: "10 idiv 3", Want: []string{"3"}},
		{Expr: "1 div 2", Want: []string{"0.5"}},
		{Expr: "7 mod 4", Want: []string{"3"}},
		{Expr: "-(1 to 1)", Want: []string{"-1"}},
		{Expr: "2 * 3 + 4", Want: []string{"10"}},
		{Expr: "2 + 3 * 4", Want: []string{"14"}},
		{Expr: "1 to 4", Want: []string{"1", "2", "3", "4"}},
		{Expr: "4 to 1", Want: nil},
		{Expr: "(1, 2, 3)", Want: []string{"1", "2", "3"}},
		{Expr: "()", Want: nil},
		{Expr: "for $x in 1 to 3 return $x * 2", Want: []string{"2", "4", "6"}},
		{Expr: "for $x in () return $x", Want: nil},
		{Expr: "let $x := 5 return $x + 1", Want: []string{"6"}},
		{Expr: "let $x := 2 return let $x := 3 return $x", Want: []string{"3"}},
		{Expr: "if (1 = 1) then 'a' else 'b'", Want: []string{"a"}},
		{Expr: "if (()) then 'a' else 'b'", Want: []string{"b"}},
		{Expr: "some $x in (1, 2, 3) satisfies $x ge 3", Want: []string{"true"}},
		{Expr: "some $x in () satisfies $x", Want: []string{"false"}},
		{Expr: "every $x in (1, 2, 3) satisfies $x gt 0", Want: []string{"true"}},
		{Expr: "every $x in (1, 2, 3) satisfies $x gt 1", Want: []string{"false"}},
		{Expr: "'abc' lt 'abd'", Want: []string{"true"}},
		{Expr: "1.5 eq 1.5", Want: []string{"true"}},
		{Expr: "(1, 2, 3) = 2", Want: []string{"true"}},
		{Expr: "(1, 2, 3) = 5", Want: []string{"false"}},
		{Expr: "(1, 2) != (1, 2)", Want: []string{"true"}},
		{Expr: "1 = 1 and 2 = 2", Want: []string{"true"}},
		{Expr: "1 = 2 or 2 = 2", Want: []string{"true"}},
		{Expr: "'3.5' cast as xs:double + 1", Want: []string{"4.5"}},
		{Expr: "'12' castable as xs:integer", Want: []string{"true"}},
		{Expr: "'abc' castable as xs:integer", Want: []string{"false"}},
		{Expr: "1 div 0.0e0", Want: []string{"INF"}},
		{
			Expr: "iterate $x in (1, 2, 3, 4) return if ($x ge 3) then break else $x",
			Want: []string{"1", "2"},
		},
		{Expr: "break", Want: nil},
	}
	for _, c := range tests {
		t.Run(c.Expr, func(t *testing.T) {
			query, err := Build(c.Expr)
			require.NoError(t, err)
			seq, err := query.Eval()
			require.NoError(t, err)
			if diff := cmp.Diff(c.Want, seq.Strings()); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryFind(t *testing.T) {
	doc, err := xml.ParseString("<price>3.5</price>")
	require.NoError(t, err)

	tests := []struct {
		Expr string
		Want []string
	}{
		{Expr: ". + 1", Want: []string{"4.5"}},
		{Expr: ". eq '3.5'", Want: []string{"true"}},
		{Expr: ". = 3.5", Want: []string{"true"}},
		{Expr: ". is .", Want: []string{"true"}},
	}
	for _, c := range tests {
		t.Run(c.Expr, func(t *testing.T) {
			query, err := Build(c.Expr)
			require.NoError(t, err)
			seq, err := query.Find(doc)
			require.NoError(t, err)
			require.Equal(t, c.Want, seq.Strings())
		})
	}
}

func TestQueryGlobals(t *testing.T) {
	env := DefaultStaticContext()
	name, err := xml.ParseName("rate")
	require.NoError(t, err)
	env.Define(NewGlobalVariable(name, int64(10)))

	query, err := BuildWith("for $x in 1 to 3 return $x * $rate", env)
	require.NoError(t, err)
	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"10", "20", "30"}, seq.Strings())
}

func TestQueryDynamicErrors(t *testing.T) {
	tests := []struct {
		Expr string
		Code string
	}{
		{Expr: "1 div 0", Code: CodeDivZero},
		{Expr: "1 idiv 0", Code: CodeDivZero},
		{Expr: "2 + 'a'", Code: CodeType},
		{Expr: ". + 1", Code: CodeContext},
		{Expr: "'a' cast as xs:integer", Code: CodeCast},
	}
	for _, c := range tests {
		t.Run(c.Expr, func(t *testing.T) {
			query, err := Build(c.Expr)
			require.NoError(t, err)
			_, err = query.Eval()
			require.Error(t, err)

			var dyn *DynamicError
			require.True(t, errors.As(err, &dyn))
			require.Equal(t, c.Code, dyn.Code)
			require.False(t, dyn.Position.Zero())
		})
	}
}

func TestQueryStaticErrors(t *testing.T) {
	tests := []struct {
		Expr string
		Code string
	}{
		{Expr: "1 +", Code: CodeSyntax},
		{Expr: "let $x 5 return $x", Code: CodeSyntax},
		{Expr: "if (1) then 2", Code: CodeSyntax},
		{Expr: "for $x in 1 to 3", Code: CodeSyntax},
		{Expr: "1 2", Code: CodeSyntax},
		{Expr: "$nope + 1", Code: CodeUndefined},
		{Expr: "1 cast as xs:unknown", Code: CodeStaticType},
		{Expr: "1 union 2", Code: CodeStaticType},
	}
	for _, c := range tests {
		t.Run(c.Expr, func(t *testing.T) {
			_, err := Build(c.Expr)
			require.Error(t, err)

			var static *StaticError
			require.True(t, errors.As(err, &static))
			require.Equal(t, c.Code, static.Code)
		})
	}
}

func TestQueryReuse(t *testing.T) {
	query, err := Build("for $x in 1 to 3 return $x * $x")
	require.NoError(t, err)
	for range 3 {
		seq, err := query.Eval()
		require.NoError(t, err)
		require.Equal(t, []string{"1", "4", "9"}, seq.Strings())
	}
}
