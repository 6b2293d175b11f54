// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// FrameSize is the length of a binary reading: ax|ay|az|force, each a
// little-endian IEEE-754 float32.
const FrameSize = 16

// ErrShortFrame is returned when a payload is too short to decode.
var ErrShortFrame = errors.New("short glove frame")

// DecodeFloat32LE decodes one 4-byte little-endian float32, the encoding
// of every glove characteristic.
func DecodeFloat32LE(b []byte) (float64, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes, got %d", ErrShortFrame, len(b))
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
}

// DecodeFrame decodes a FrameSize payload.
func DecodeFrame(b []byte) (Reading, error) {
	if len(b) != FrameSize {
		return Reading{}, fmt.Errorf("%w: need %d bytes, got %d", ErrShortFrame, FrameSize, len(b))
	}
	var v [4]float64
	for i := range v {
		f, err := DecodeFloat32LE(b[i*4 : i*4+4])
		if err != nil {
			return Reading{}, err
		}
		v[i] = f
	}
	return Reading{Ax: v[0], Ay: v[1], Az: v[2], Force: v[3]}, nil
}

// EncodeFrame is the inverse of DecodeFrame. Values are narrowed to float32.
func EncodeFrame(r Reading) []byte {
	b := make([]byte, FrameSize)
	for i, f := range [4]float64{r.Ax, r.Ay, r.Az, r.Force} {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(f)))
	}
	return b
}
