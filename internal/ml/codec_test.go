package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/performance-hub/internal/domain/shared"
)

func TestFitLabelCodec_SortedContiguousCodes(t *testing.T) {
	codec, err := FitLabelCodec([]string{"Poor", "Good", "Average", "Poor", "Good"})
	require.NoError(t, err)

	assert.Equal(t, 3, codec.NumClasses())
	assert.Equal(t, []string{"Average", "Good", "Poor"}, codec.Labels())

	code, ok := codec.Encode("Average")
	require.True(t, ok)
	assert.Equal(t, 0, code)

	code, ok = codec.Encode("Poor")
	require.True(t, ok)
	assert.Equal(t, 2, code)
}

func TestLabelCodec_RoundTrip(t *testing.T) {
	codec, err := FitLabelCodec([]string{"Good", "Poor"})
	require.NoError(t, err)

	for _, label := range codec.Labels() {
		code, ok := codec.Encode(label)
		require.True(t, ok)
		decoded, err := codec.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, label, decoded)
	}
}

func TestLabelCodec_DecodeOutOfRange(t *testing.T) {
	codec, err := FitLabelCodec([]string{"Good", "Poor"})
	require.NoError(t, err)

	_, err = codec.Decode(5)
	require.Error(t, err)
	assert.True(t, shared.IsInvalidValue(err))

	_, err = codec.Decode(-1)
	assert.Error(t, err)
}

func TestLabelCodec_EncodeUnknownLabel(t *testing.T) {
	codec, err := FitLabelCodec([]string{"Good", "Poor"})
	require.NoError(t, err)

	_, ok := codec.Encode("Excellent")
	assert.False(t, ok)
}

func TestFitLabelCodec_SingleClassFails(t *testing.T) {
	_, err := FitLabelCodec([]string{"Good", "Good", "Good"})
	require.Error(t, err)
	assert.True(t, shared.IsDataset(err))
}
