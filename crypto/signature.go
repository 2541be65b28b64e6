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

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/tos-network/terminos/internal/serializer"
)

// Signature is a secp256k1 ECDSA signature over a transaction or block
// hash, carried internally in its DER encoding.
type Signature struct {
	inner *ecdsa.Signature
}

// Address identifies an account by the compressed encoding of its
// public key.
type Address [pointSize]byte

// Hash32 is the 32-byte digest type signatures are computed over; it
// mirrors common.Hash without importing the common package, since
// crypto is the lower-level primitive the rest of terminos builds on.
type Hash32 [32]byte

// KeyPair is a secp256k1 signing keypair.
type KeyPair struct {
	priv *btcec.PrivateKey
}

// GenerateKeyPair draws a fresh keypair from the OS CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// Address returns the compressed public key encoding identifying this
// keypair's account.
func (kp *KeyPair) Address() Address {
	var a Address
	copy(a[:], kp.priv.PubKey().SerializeCompressed())
	return a
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over hash.
func (kp *KeyPair) Sign(hash Hash32) Signature {
	return Signature{inner: ecdsa.Sign(kp.priv, hash[:])}
}

// Verify reports whether sig is a valid signature over hash by the
// holder of pub.
func Verify(pub Address, hash Hash32, sig Signature) bool {
	pubKey, err := btcec.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	return sig.inner.Verify(hash[:], pubKey)
}

func (s Signature) Write(w *serializer.Writer) {
	w.WriteBytes(s.inner.Serialize())
}

func ReadSignature(r *serializer.Reader) (Signature, error) {
	der, err := r.ReadBytes()
	if err != nil {
		return Signature{}, err
	}
	inner, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return Signature{}, ErrInvalidSignature
	}
	return Signature{inner: inner}, nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Write(w *serializer.Writer) {
	w.WriteFixedBytes(a[:])
}

func ReadAddress(r *serializer.Reader) (Address, error) {
	var a Address
	b, err := r.ReadFixedBytes(pointSize)
	if err != nil {
		return a, err
	}
	if _, err := btcec.ParsePubKey(b); err != nil {
		return a, ErrInvalidPublicKey
	}
	copy(a[:], b)
	return a, nil
}
