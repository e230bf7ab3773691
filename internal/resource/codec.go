// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec serialises document bodies.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec returns the CBOR codec used for document bodies. Struct
// fields are keyed by their json tag names; timestamps keep nanosecond
// precision.
func NewCBORCodec() (Codec, error) {
	enc, err := cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return &cborCodec{enc: enc, dec: dec}, nil
}

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	b, err := c.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return b, nil
}

func (c *cborCodec) Unmarshal(data []byte, v any) error {
	if err := c.dec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return nil
}
