package xpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCompileShape(t *testing.T) {
	tests := []struct {
		Expr string
		Want string
	}{
		{
			Expr: "1 + 2 * 3",
			Want: `arithmetic<add>
  literal([1])
  arithmetic<multiply>
    literal([2])
    literal([3])
`,
		},
		{
			Expr: "(1, 2) union (3)",
			Want: `set<union>
  sequence
    literal([1])
    literal([2])
  literal([3])
`,
		},
		{
			Expr: "1 eq 1 and . = 2",
			Want: `logical<and>
  value-comparison<value-eq>
    literal([1])
    literal([1])
  general-comparison<equal>
    context-item
    literal([2])
`,
		},
		{
			Expr: "for $x in 1 to 3 return $x",
			Want: `for($x)
  range
    literal([1])
    literal([3])
  variable($x)
`,
		},
		{
			Expr: "'1' cast as xs:integer",
			Want: `cast(xs:integer)
  literal([1])
`,
		},
		{
			Expr: "- 1 + 2",
			Want: `arithmetic<add>
  negate
    literal([1])
  literal([2])
`,
		},
	}
	for _, c := range tests {
		t.Run(c.Expr, func(t *testing.T) {
			expr, err := CompileString(c.Expr)
			require.NoError(t, err)
			if diff := cmp.Diff(c.Want, Dump(expr)); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompilePositions(t *testing.T) {
	expr, err := CompileString("1 +\n 2")
	require.NoError(t, err)
	pos := expr.Location()
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 3, pos.Column)
}

func TestCompileErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1, 2",
		"let $x := return 1",
		"for x in 1 to 3 return $x",
		"some $x in (1) returns $x",
		"if 1 then 2 else 3",
		"1 cast as",
		"break break",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := CompileString(expr)
			require.Error(t, err)
		})
	}
}

func TestCompileKeywordsAsNames(t *testing.T) {
	// non-structural keywords like div only act as operators in infix
	// position
	_, err := CompileString("1 div 2")
	require.NoError(t, err)
}
