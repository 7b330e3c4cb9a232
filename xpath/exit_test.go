package xpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitSignalNilSafe(t *testing.T) {
	var signal *ExitSignal
	signal.Request()
	require.False(t, signal.Requested())
	signal.Clear()
}

func TestExitSignalRoundTrip(t *testing.T) {
	signal := NewExitSignal()
	require.False(t, signal.Requested())
	signal.Request()
	require.True(t, signal.Requested())
	signal.Clear()
	require.False(t, signal.Requested())
}

func TestBreakOutsideLoop(t *testing.T) {
	// a break without a loop evaluates to nothing instead of failing
	query, err := Build("(1, break, 2)")
	require.NoError(t, err)
	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, seq.Strings())
}

func TestBreakStopsInnermostLoop(t *testing.T) {
	// the inner break must not leak into the outer iterate
	expr := "iterate $x in 1 to 3 return iterate $y in 1 to 5 return if ($y gt $x) then break else $y"
	query, err := Build(expr)
	require.NoError(t, err)
	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "1", "2", "1", "2", "3"}, seq.Strings())
}

func TestBreakFlushesCurrentStep(t *testing.T) {
	// the item produced before the break in the same step is kept
	query, err := Build("iterate $x in 1 to 4 return if ($x eq 2) then ($x, break) else $x")
	require.NoError(t, err)
	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, seq.Strings())
}

func TestIterateWithoutBreak(t *testing.T) {
	query, err := Build("iterate $x in 1 to 3 return $x * $x")
	require.NoError(t, err)
	seq, err := query.Eval()
	require.NoError(t, err)
	require.Equal(t, []string{"1", "4", "9"}, seq.Strings())
}

func TestIterateRestart(t *testing.T) {
	query, err := Build("iterate $x in 1 to 4 return if ($x gt 2) then break else $x")
	require.NoError(t, err)
	// the signal is cleared when the loop stops, so the query can run
	// again from a clean state
	for range 2 {
		seq, err := query.Eval()
		require.NoError(t, err)
		require.Equal(t, []string{"1", "2"}, seq.Strings())
	}
}
