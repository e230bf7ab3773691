// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// IDLength is the size in bytes of every document identifier.
const IDLength = 12

// ErrInvalidID is returned by [ParseID] when the input is not a 24-character
// hex string.
var ErrInvalidID = errors.New("invalid document id")

// ID is the opaque, globally unique identifier shared by every persisted
// document. The first eight bytes carry the millisecond timestamp and the
// sub-millisecond sequence of a UUIDv7, so identifiers generated by one
// process sort strictly by creation order; the remaining four bytes are
// random.
type ID [IDLength]byte

// NilID is the zero identifier. It is used for "no parent", "no base
// snapshot" and similar absent references.
var NilID ID

// NewID generates a fresh identifier.
func NewID() ID {
	var id ID

	v7, err := uuid.NewV7()
	if err != nil {
		// fall back to a fully random identifier
		if _, rerr := rand.Read(id[:]); rerr != nil {
			panic(fmt.Sprintf("models: cannot generate id: %v", rerr))
		}
		return id
	}

	copy(id[:6], v7[:6])
	id[6] = v7[6] & 0x0f // strip the version nibble
	id[7] = v7[7]
	copy(id[8:], v7[12:16])
	return id
}

// ParseID decodes the hex form produced by [ID.String].
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != IDLength*2 {
		return NilID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return NilID, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return id, nil
}

// IsZero reports whether id is the zero identifier.
func (id ID) IsZero() bool {
	return id == NilID
}

// Compare orders identifiers bytewise, which is creation order for
// identifiers from [NewID].
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// String returns the lower-case hex representation of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler so identifiers render as hex
// in logs and JSON.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
