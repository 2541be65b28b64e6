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

package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tos-network/terminos/common"
	"github.com/tos-network/terminos/crypto"
)

func TestOpaqueDiscriminantBytes(t *testing.T) {
	require.Equal(t, OpaqueID(0), HashOpaqueID)
	require.Equal(t, OpaqueID(1), AddressOpaqueID)
	require.Equal(t, OpaqueID(2), SignatureOpaqueID)
	require.Equal(t, OpaqueID(3), CiphertextOpaqueID)
	require.Equal(t, OpaqueID(4), CiphertextValidityProofOpaqueID)
	require.Equal(t, OpaqueID(5), RangeProofOpaqueID)
}

func TestEncodeDecodeHashRoundTrip(t *testing.T) {
	h := common.NewHash([]byte("payload"))
	encoded := Encode(WrapHash(h))
	require.Equal(t, byte(HashOpaqueID), encoded[0])

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, hashOpaque{h}, decoded)
}

func TestEncodeDecodeCiphertextRoundTrip(t *testing.T) {
	c := crypto.NewCiphertextFromScalar(42).Compress()
	encoded := Encode(WrapCiphertext(c))
	require.Equal(t, byte(CiphertextOpaqueID), encoded[0])

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, CiphertextOpaqueID, decoded.OpaqueID())
}

func TestDecodeUnknownTagFails(t *testing.T) {
	_, err := Decode([]byte{0xff})
	require.Error(t, err)
}

func TestJSONRoundTripSignature(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	var h crypto.Hash32
	h[0] = 1
	sig := kp.Sign(h)

	raw, err := MarshalJSON(WrapSignature(sig))
	require.NoError(t, err)

	decoded, err := UnmarshalJSON(raw)
	require.NoError(t, err)
	require.Equal(t, SignatureOpaqueID, decoded.OpaqueID())
}
