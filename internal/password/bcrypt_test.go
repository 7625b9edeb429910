package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCodec_HashAndVerify(t *testing.T) {
	c, err := NewCodec(bcrypt.MinCost)
	require.NoError(t, err)

	digest, err := c.Hash("s3cret12")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret12", digest)

	assert.True(t, c.Verify("s3cret12", digest))
	assert.False(t, c.Verify("wrong", digest))
}

func TestCodec_EqualPlaintextsProduceDifferentDigests(t *testing.T) {
	c, err := NewCodec(bcrypt.MinCost)
	require.NoError(t, err)

	d1, err := c.Hash("s3cret12")
	require.NoError(t, err)
	d2, err := c.Hash("s3cret12")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, c.Verify("s3cret12", d1))
	assert.True(t, c.Verify("s3cret12", d2))
}

func TestCodec_VerifyMalformedDigest(t *testing.T) {
	c, err := NewCodec(0)
	require.NoError(t, err)

	assert.False(t, c.Verify("anything", ""))
	assert.False(t, c.Verify("anything", "not-a-bcrypt-digest"))
}

func TestNewCodec_CostValidation(t *testing.T) {
	_, err := NewCodec(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	c, err := NewCodec(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, c.cost)
}
