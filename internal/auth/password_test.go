package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashUsesCost10ByDefault(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(0).Hash("s3cret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestHasher_Compare(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "nope"), ErrPasswordMismatch)
}

func TestHasher_CompareMalformedHash(t *testing.T) {
	t.Parallel()

	err := NewHasher(bcrypt.MinCost).Compare("not-a-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
