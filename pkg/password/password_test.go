package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	Cost = bcrypt.MinCost
	defer func() { Cost = bcrypt.DefaultCost }()

	hash, err := Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, Verify("correct horse", hash))
	assert.False(t, Verify("battery staple", hash))
	assert.False(t, Verify("", hash))
	assert.False(t, Verify("correct horse", ""))
}

func TestHashRejects(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Hash(strings.Repeat("a", MaxLength+1))
	assert.ErrorIs(t, err, ErrTooLong)
}
