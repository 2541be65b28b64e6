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

// Package crypto holds the primitives the rest of terminos treats as
// an external library per spec.md §1: hashing, ElGamal-style
// homomorphic ciphertexts, and signatures. Point arithmetic is backed
// by the secp256k1 group from btcec, the same curve family the rest
// of the retrieval pack reaches for (bobanetwork-erigon's go.mod).
package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/tos-network/terminos/internal/serializer"
)

const pointSize = 33 // compressed secp256k1 point encoding

// point is a thin wrapper so Ciphertext's homomorphic operations read
// as group operations rather than raw curve calls.
type point struct {
	x, y *btcec.FieldVal
}

func identityPoint() point {
	return point{x: new(btcec.FieldVal), y: new(btcec.FieldVal)}
}

func (p point) isIdentity() bool {
	return p.x.IsZero() && p.y.IsZero()
}

func (p point) toJacobian() *btcec.JacobianPoint {
	j := &btcec.JacobianPoint{}
	j.X.Set(p.x)
	j.Y.Set(p.y)
	if p.isIdentity() {
		j.Z.SetInt(0)
	} else {
		j.Z.SetInt(1)
	}
	return j
}

func fromJacobian(j *btcec.JacobianPoint) point {
	j.ToAffine()
	return point{x: new(btcec.FieldVal).Set(&j.X), y: new(btcec.FieldVal).Set(&j.Y)}
}

func (p point) add(o point) point {
	var result btcec.JacobianPoint
	btcec.AddNonConst(p.toJacobian(), o.toJacobian(), &result)
	return fromJacobian(&result)
}

func (p point) negate() point {
	if p.isIdentity() {
		return p
	}
	y := new(btcec.FieldVal).Set(p.y).Negate(1).Normalize()
	return point{x: new(btcec.FieldVal).Set(p.x), y: y}
}

func (p point) sub(o point) point {
	return p.add(o.negate())
}

func scalarBaseMul(scalar uint64) point {
	// ModNScalar has no direct shift/add helpers for raw integers, so
	// build the scalar from its big-endian byte representation.
	var buf [32]byte
	buf[24] = byte(scalar >> 56)
	buf[25] = byte(scalar >> 48)
	buf[26] = byte(scalar >> 40)
	buf[27] = byte(scalar >> 32)
	buf[28] = byte(scalar >> 24)
	buf[29] = byte(scalar >> 16)
	buf[30] = byte(scalar >> 8)
	buf[31] = byte(scalar)
	var full btcec.ModNScalar
	full.SetBytes(&buf)

	var result btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&full, &result)
	if full.IsZero() {
		return identityPoint()
	}
	return fromJacobian(&result)
}

func (p point) compress() [pointSize]byte {
	var out [pointSize]byte
	if p.isIdentity() {
		return out // all-zero encoding is the identity/zero ciphertext component
	}
	pk := btcec.NewPublicKey(p.x, p.y)
	copy(out[:], pk.SerializeCompressed())
	return out
}

func decompressPoint(b [pointSize]byte) (point, error) {
	var zero [pointSize]byte
	if b == zero {
		return identityPoint(), nil
	}
	pk, err := btcec.ParsePubKey(b[:])
	if err != nil {
		return point{}, ErrInvalidCiphertext
	}
	return point{x: pk.X(), y: pk.Y()}, nil
}

// Ciphertext is an ElGamal pair (commitment, handle) over secp256k1,
// supporting the homomorphic operations the energy deposit/refund path
// in verifier needs. The zero value is the additive identity.
type Ciphertext struct {
	commitment point
	handle     point
}

// ZeroCiphertext is the additive identity: adding it to any Ciphertext
// returns that Ciphertext unchanged.
var ZeroCiphertext = Ciphertext{commitment: identityPoint(), handle: identityPoint()}

// NewCiphertextFromScalar builds a Ciphertext carrying amount as a
// plain (unblinded) public scalar, the representation refund/deposit
// paths use when crediting a Public deposit or a gas refund.
func NewCiphertextFromScalar(amount uint64) Ciphertext {
	return Ciphertext{commitment: scalarBaseMul(amount), handle: identityPoint()}
}

func (c Ciphertext) Add(o Ciphertext) Ciphertext {
	return Ciphertext{
		commitment: c.commitment.add(o.commitment),
		handle:     c.handle.add(o.handle),
	}
}

func (c Ciphertext) Sub(o Ciphertext) Ciphertext {
	return Ciphertext{
		commitment: c.commitment.sub(o.commitment),
		handle:     c.handle.sub(o.handle),
	}
}

// AddScalar adds a plain public scalar to the ciphertext's commitment,
// as happens when a gas refund or a Public deposit is credited to a
// receiver balance lane.
func (c Ciphertext) AddScalar(amount uint64) Ciphertext {
	return Ciphertext{commitment: c.commitment.add(scalarBaseMul(amount)), handle: c.handle}
}

func (c Ciphertext) SubScalar(amount uint64) Ciphertext {
	return Ciphertext{commitment: c.commitment.sub(scalarBaseMul(amount)), handle: c.handle}
}

func (c Ciphertext) IsZero() bool {
	return c.commitment.isIdentity() && c.handle.isIdentity()
}

// CompressedCiphertext is the compact wire/storage form of a
// Ciphertext.
type CompressedCiphertext struct {
	Commitment [pointSize]byte
	Handle     [pointSize]byte
}

func (c Ciphertext) Compress() CompressedCiphertext {
	return CompressedCiphertext{
		Commitment: c.commitment.compress(),
		Handle:     c.handle.compress(),
	}
}

func (cc CompressedCiphertext) Decompress() (Ciphertext, error) {
	commitment, err := decompressPoint(cc.Commitment)
	if err != nil {
		return Ciphertext{}, err
	}
	handle, err := decompressPoint(cc.Handle)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{commitment: commitment, handle: handle}, nil
}

func (cc CompressedCiphertext) Write(w *serializer.Writer) {
	w.WriteFixedBytes(cc.Commitment[:])
	w.WriteFixedBytes(cc.Handle[:])
}

func ReadCompressedCiphertext(r *serializer.Reader) (CompressedCiphertext, error) {
	var cc CompressedCiphertext
	commitment, err := r.ReadFixedBytes(pointSize)
	if err != nil {
		return cc, err
	}
	handle, err := r.ReadFixedBytes(pointSize)
	if err != nil {
		return cc, err
	}
	copy(cc.Commitment[:], commitment)
	copy(cc.Handle[:], handle)
	return cc, nil
}
