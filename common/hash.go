// Copyright 2024 The terminos Authors
// This file is part of the terminos library.
//
// The terminos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The terminos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the terminos library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"encoding/hex"
	"golang.org/x/crypto/sha3"

	"github.com/tos-network/terminos/internal/serializer"
)

// HashLength is the number of bytes in a content-addressed Hash.
const HashLength = 32

// Hash is a 32-byte content-addressed identifier, used for blocks,
// transactions, contracts and assets alike.
type Hash [HashLength]byte

// ZeroHash and MaxHash are the two distinguished constants every
// versioned-storage and hard-fork lookup compares against.
var (
	ZeroHash = Hash{}
	MaxHash  = func() Hash {
		var h Hash
		for i := range h {
			h[i] = 0xff
		}
		return h
	}()
)

// NewHash computes the content hash of b (SHA3-256, matching the
// teacher's original sha256_fn opaque bridge which also hashes with
// sha3.Sha3_256 rather than NIST SHA-256).
func NewHash(b []byte) Hash {
	return Hash(sha3.Sum256(b))
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == ZeroHash }

// HashFromBytes validates the length and copies b into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b)
}

func (h Hash) Write(w *serializer.Writer) {
	w.WriteFixedBytes(h[:])
}

func ReadHash(r *serializer.Reader) (Hash, error) {
	b, err := r.ReadFixedBytes(HashLength)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b)
}
