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

package crypto

import "errors"

var (
	// ErrInvalidCiphertext is returned when a compressed point does not
	// decode to a valid secp256k1 curve point.
	ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext point encoding")

	// ErrInvalidSignature is returned when a signature fails to verify
	// or decodes to a malformed (r, s) pair.
	ErrInvalidSignature = errors.New("crypto: invalid signature")

	// ErrInvalidPublicKey is returned when a compressed public key does
	// not decode to a point on the curve.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key encoding")
)
