package xor

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenPad(t *testing.T) {
	pad, err := GenPad(32, rand.Reader)
	require.NoError(t, err)
	assert.Len(t, pad, 32)
}

func TestGenPad_Neg(t *testing.T) {
	_, err := GenPad(0, rand.Reader)
	assert.ErrorIs(t, err, ErrEmptyPad)
	_, err = GenPad(10, nil)
	assert.Error(t, err)
	_, err = GenPad(10, bytes.NewBuffer(nil))
	assert.Error(t, err)
}
