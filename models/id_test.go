// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_StrictlyIncreasing(t *testing.T) {
	prev := NewID()
	for range 1000 {
		next := NewID()
		require.Equal(t, 1, next.Compare(prev), "%s must sort after %s", next, prev)
		prev = next
	}
}

func TestParseID(t *testing.T) {
	id := NewID()

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("xyz")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = ParseID("zzzzzzzzzzzzzzzzzzzzzzzz")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestID_TextRoundTrip(t *testing.T) {
	id := NewID()
	text, err := id.MarshalText()
	require.NoError(t, err)

	var back ID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, id, back)
	assert.True(t, NilID.IsZero())
	assert.False(t, id.IsZero())
}

func TestAccessLevel_AtLeast(t *testing.T) {
	assert.True(t, AccessFull.AtLeast(AccessRead))
	assert.True(t, AccessRead.AtLeast(AccessRead))
	assert.False(t, AccessNone.AtLeast(AccessRead))
}
