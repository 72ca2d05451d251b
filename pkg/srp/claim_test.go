package srp_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/fzdarsky/cognito-srp/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolName(t *testing.T) {
	assert.Equal(t, "AbCdEf123", srp.PoolName("us-east-1_AbCdEf123"))
	assert.Equal(t, "ExamplePool", srp.PoolName("ExamplePool"))
	assert.Equal(t, "", srp.PoolName("eu-west-1_"))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2018, time.September, 4, 18, 27, 52, 0, time.UTC)
	assert.Equal(t, vecTimestamp, srp.FormatTimestamp(ts))

	// Day of month is not zero-padded, two-digit days keep both digits.
	ts = time.Date(2024, time.December, 25, 1, 2, 3, 0, time.UTC)
	assert.Equal(t, "Wed Dec 25 01:02:03 UTC 2024", srp.FormatTimestamp(ts))

	// Non-UTC input is converted.
	berlin := time.FixedZone("CEST", 2*60*60)
	ts = time.Date(2018, time.September, 4, 20, 27, 52, 0, berlin)
	assert.Equal(t, vecTimestamp, srp.FormatTimestamp(ts))
}

func TestComputeClaimSignature(t *testing.T) {
	key, err := hex.DecodeString(vecKey)
	require.NoError(t, err)

	sig, err := srp.ComputeClaimSignature(key, vecPool, vecUser, vecSecretBlock, vecTimestamp)
	require.NoError(t, err)
	assert.Equal(t, vecSignature, sig)

	other, err := srp.ComputeClaimSignature(key, vecPool, vecUser, vecSecretBlock, "Tue Sep 4 18:27:53 UTC 2018")
	require.NoError(t, err)
	assert.NotEqual(t, sig, other)
}

func TestComputeClaimSignature_InvalidSecretBlock(t *testing.T) {
	_, err := srp.ComputeClaimSignature(make([]byte, 16), vecPool, vecUser, "not base64!", vecTimestamp)
	assert.ErrorIs(t, err, srp.ErrFormat)
}
