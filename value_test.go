package downdrag_test

import (
	"math"
	"testing"

	"github.com/CodeBeast357/downdrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailType_Convert(t *testing.T) {
	t.Parallel()

	v, err := downdrag.TypeInt.Convert(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, downdrag.IntValue(42), v)

	v, err = downdrag.TypeFloat.Convert("2.5")
	require.NoError(t, err)
	assert.Equal(t, downdrag.FloatValue(2.5), v)

	v, err = downdrag.DetailType("").Convert(" raw ")
	require.NoError(t, err)
	assert.Equal(t, downdrag.StringValue(" raw "), v)

	_, err = downdrag.TypeInt.Convert("4.5")
	assert.Error(t, err)
}

func TestDetailType_FromNumber(t *testing.T) {
	t.Parallel()

	v, err := downdrag.TypeInt.FromNumber(7.9)
	require.NoError(t, err)
	assert.Equal(t, downdrag.IntValue(7), v)

	v, err = downdrag.TypeString.FromNumber(7)
	require.NoError(t, err)
	assert.Equal(t, downdrag.StringValue("7"), v)

	_, err = downdrag.TypeFloat.FromNumber(math.Inf(1))
	assert.Error(t, err)

	_, err = downdrag.TypeInt.FromNumber(0x1p63)
	assert.Error(t, err, "2^63 overflows int64")

	v, err = downdrag.TypeInt.FromNumber(-0x1p63)
	require.NoError(t, err)
	assert.Equal(t, downdrag.IntValue(math.MinInt64), v)

	_, err = downdrag.TypeInt.FromNumber(-0x1p64)
	assert.Error(t, err)
}

func TestDetailType_Zero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, downdrag.StringValue(""), downdrag.TypeString.Zero())
	assert.Equal(t, downdrag.IntValue(0), downdrag.TypeInt.Zero())
	assert.Equal(t, downdrag.FloatValue(0), downdrag.TypeFloat.Zero())
	assert.True(t, downdrag.IsConfigError(downdrag.DetailType("date").Validate()))
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", downdrag.Value{}.String())
	assert.Equal(t, "0.1", downdrag.FloatValue(0.1).String())
	assert.Equal(t, "-3", downdrag.IntValue(-3).String())
}

func TestValue_Fixed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "7.500000", downdrag.FloatValue(7.5).Fixed())
	assert.Equal(t, "42", downdrag.IntValue(42).Fixed())
	assert.Equal(t, "a\nb", downdrag.StringValue("a\nb").Fixed())
	assert.Equal(t, "", downdrag.Value{}.Fixed())
}
