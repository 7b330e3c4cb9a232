package xpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCastValue(t *testing.T) {
	tests := []struct {
		Value  any
		Target *AtomicType
		Want   string
	}{
		{Value: "12", Target: TypeInteger, Want: "12"},
		{Value: "3.5", Target: TypeDouble, Want: "3.5"},
		{Value: "INF", Target: TypeDouble, Want: "INF"},
		{Value: "-INF", Target: TypeDouble, Want: "-INF"},
		{Value: 3.0, Target: TypeInteger, Want: "3"},
		{Value: 3.7, Target: TypeInteger, Want: "3"},
		{Value: int64(1), Target: TypeBoolean, Want: "true"},
		{Value: int64(0), Target: TypeBoolean, Want: "false"},
		{Value: "true", Target: TypeBoolean, Want: "true"},
		{Value: "1", Target: TypeBoolean, Want: "true"},
		{Value: false, Target: TypeString, Want: "false"},
		{Value: "2.50", Target: TypeDecimal, Want: "2.50"},
		{Value: "hello", Target: TypeUntypedAtomic, Want: "hello"},
	}
	for _, c := range tests {
		item, err := CastValue(c.Value, c.Target)
		require.NoError(t, err, "cast %v as %s", c.Value, c.Target)
		require.Equal(t, c.Target, item.Type())
		require.Equal(t, c.Want, itemString(item))
	}
}

func TestCastValueFailure(t *testing.T) {
	tests := []struct {
		Value  any
		Target *AtomicType
	}{
		{Value: "abc", Target: TypeInteger},
		{Value: "abc", Target: TypeDouble},
		{Value: "maybe", Target: TypeBoolean},
		{Value: "abc", Target: TypeDecimal},
		{Value: "not-a-date", Target: TypeDate},
	}
	for _, c := range tests {
		_, err := CastValue(c.Value, c.Target)
		require.Error(t, err, "cast %v as %s", c.Value, c.Target)
	}
}

func TestCastNaN(t *testing.T) {
	item, err := CastValue("NaN", TypeDouble)
	require.NoError(t, err)
	require.True(t, math.IsNaN(item.Value().(float64)))
}

func TestCastable(t *testing.T) {
	require.True(t, Castable("12", TypeInteger))
	require.False(t, Castable("12.5.3", TypeDouble))
	require.True(t, Castable("false", TypeBoolean))
	require.False(t, Castable("falsy", TypeBoolean))
}

func TestCastItemAtomizes(t *testing.T) {
	item, err := CastItem(NewUntyped(" 42"), TypeInteger)
	require.NoError(t, err)
	require.Equal(t, int64(42), item.Value())
}
