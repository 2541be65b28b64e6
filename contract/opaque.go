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

// Package contract is the opaque bridge between the deterministic VM
// and terminos's native cryptographic types: every value the VM can
// hold opaquely (a Hash, Address, Signature, or one of the
// homomorphic-balance proof types) round-trips through a 1-byte
// discriminant plus its native wire form, and through a JSON registry
// for RPC-facing (de)serialization.
package contract

import (
	"encoding/hex"
	"encoding/json"

	"github.com/tos-network/terminos/common"
	"github.com/tos-network/terminos/crypto"
	"github.com/tos-network/terminos/internal/serializer"
)

// OpaqueID is the 1-byte discriminant tag identifying an opaque
// value's concrete type on the wire.
type OpaqueID uint8

const (
	HashOpaqueID OpaqueID = iota
	AddressOpaqueID
	SignatureOpaqueID
	CiphertextOpaqueID
	CiphertextValidityProofOpaqueID
	RangeProofOpaqueID
)

// Opaque is any VM-visible opaque value.
type Opaque interface {
	OpaqueID() OpaqueID
	Write(w *serializer.Writer)
}

// CiphertextValidityProof and RangeProof are carried as opaque blobs:
// the VM never inspects their structure, only threads them through to
// verification, so terminos stores them as their raw proof bytes.
type CiphertextValidityProof struct{ Bytes []byte }
type RangeProof struct{ Bytes []byte }

type hashOpaque struct{ common.Hash }
type addressOpaque struct{ crypto.Address }
type signatureOpaque struct{ crypto.Signature }
type ciphertextOpaque struct{ crypto.CompressedCiphertext }

func (hashOpaque) OpaqueID() OpaqueID      { return HashOpaqueID }
func (addressOpaque) OpaqueID() OpaqueID   { return AddressOpaqueID }
func (signatureOpaque) OpaqueID() OpaqueID { return SignatureOpaqueID }
func (ciphertextOpaque) OpaqueID() OpaqueID { return CiphertextOpaqueID }
func (CiphertextValidityProof) OpaqueID() OpaqueID { return CiphertextValidityProofOpaqueID }
func (RangeProof) OpaqueID() OpaqueID              { return RangeProofOpaqueID }

func (p CiphertextValidityProof) Write(w *serializer.Writer) { w.WriteBytes(p.Bytes) }
func (p RangeProof) Write(w *serializer.Writer)              { w.WriteBytes(p.Bytes) }

// WrapHash, WrapAddress, WrapSignature and WrapCiphertext lift a
// native terminos type into the Opaque interface the VM bridge deals
// with.
func WrapHash(h common.Hash) Opaque                           { return hashOpaque{h} }
func WrapAddress(a crypto.Address) Opaque                     { return addressOpaque{a} }
func WrapSignature(s crypto.Signature) Opaque                 { return signatureOpaque{s} }
func WrapCiphertext(c crypto.CompressedCiphertext) Opaque     { return ciphertextOpaque{c} }

// Encode writes v's discriminant followed by its native wire form.
func Encode(v Opaque) []byte {
	w := serializer.NewWriter()
	w.WriteU8(uint8(v.OpaqueID()))
	v.Write(w)
	return w.Bytes()
}

// Decode dispatches on the leading discriminant byte to reconstruct
// an Opaque value. Unknown tags fail with ErrInvalidValue.
func Decode(data []byte) (Opaque, error) {
	r := serializer.NewReader(data)
	tag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch OpaqueID(tag) {
	case HashOpaqueID:
		h, err := common.ReadHash(r)
		if err != nil {
			return nil, err
		}
		return hashOpaque{h}, nil
	case AddressOpaqueID:
		a, err := crypto.ReadAddress(r)
		if err != nil {
			return nil, err
		}
		return addressOpaque{a}, nil
	case SignatureOpaqueID:
		s, err := crypto.ReadSignature(r)
		if err != nil {
			return nil, err
		}
		return signatureOpaque{s}, nil
	case CiphertextOpaqueID:
		c, err := crypto.ReadCompressedCiphertext(r)
		if err != nil {
			return nil, err
		}
		return ciphertextOpaque{c}, nil
	case CiphertextValidityProofOpaqueID:
		b, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return CiphertextValidityProof{Bytes: b}, nil
	case RangeProofOpaqueID:
		b, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return RangeProof{Bytes: b}, nil
	default:
		return nil, serializer.ErrInvalidValue
	}
}

// jsonEnvelope is the polymorphic JSON form of an Opaque value: a tag
// naming its concrete type plus its hex-encoded native wire bytes.
type jsonEnvelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

var jsonTypeNames = map[OpaqueID]string{
	HashOpaqueID:                    "hash",
	AddressOpaqueID:                 "address",
	SignatureOpaqueID:               "signature",
	CiphertextOpaqueID:              "ciphertext",
	CiphertextValidityProofOpaqueID: "ciphertext_validity_proof",
	RangeProofOpaqueID:              "range_proof",
}

// MarshalJSON encodes v as a {type, data} envelope, the JSON registry
// form RPC responses carrying opaque VM values use.
func MarshalJSON(v Opaque) ([]byte, error) {
	env := jsonEnvelope{Type: jsonTypeNames[v.OpaqueID()], Data: hex.EncodeToString(Encode(v)[1:])}
	return json.Marshal(env)
}

// UnmarshalJSON reconstructs an Opaque from its {type, data} envelope.
func UnmarshalJSON(data []byte) (Opaque, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	for id, name := range jsonTypeNames {
		if name == env.Type {
			raw, err := hex.DecodeString(env.Data)
			if err != nil {
				return nil, err
			}
			return Decode(append([]byte{byte(id)}, raw...))
		}
	}
	return nil, serializer.ErrInvalidValue
}
