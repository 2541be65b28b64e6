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

package p2p

import (
	"github.com/google/uuid"

	"github.com/tos-network/terminos/internal/serializer"
)

// HandshakePayload is the first packet exchanged on a new connection:
// a peer presents its NetworkID so both sides can refuse to proceed
// before any further bytes are parsed.
type HandshakePayload struct {
	NetworkID [NetworkIDLength]byte
}

// Matches reports whether h's NetworkID matches this build's.
func (h HandshakePayload) Matches() bool {
	return h.NetworkID == NetworkID
}

func (h HandshakePayload) Write(w *serializer.Writer) {
	w.WriteFixedBytes(h.NetworkID[:])
}

// ReadHandshakePayload reads a HandshakePayload from r.
func ReadHandshakePayload(r *serializer.Reader) (HandshakePayload, error) {
	b, err := r.ReadFixedBytes(NetworkIDLength)
	if err != nil {
		return HandshakePayload{}, err
	}
	var h HandshakePayload
	copy(h.NetworkID[:], b)
	return h, nil
}

// RawPayload is a length-prefixed opaque body, used for the packet
// kinds whose payload schema is a concern of higher protocol layers
// (transaction/block propagation, bootstrap, key exchange, inventory,
// chain sync) — this package only frames and classifies them.
type RawPayload struct {
	Bytes []byte
}

func (p RawPayload) Write(w *serializer.Writer) {
	w.WriteBytes(p.Bytes)
}

// ReadRawPayload reads a RawPayload from r.
func ReadRawPayload(r *serializer.Reader) (RawPayload, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return RawPayload{}, err
	}
	return RawPayload{Bytes: b}, nil
}

// RequestEnvelope carries a correlation id alongside a raw request
// body, so an ObjectRequest/ChainRequest's matching *Response can be
// routed back to the waiting caller instead of relying on connection
// order (object responses are order-independent).
type RequestEnvelope struct {
	ID      uuid.UUID
	Payload RawPayload
}

// NewRequestEnvelope allocates a fresh correlation id for payload.
func NewRequestEnvelope(payload []byte) RequestEnvelope {
	return RequestEnvelope{ID: uuid.New(), Payload: RawPayload{Bytes: payload}}
}

func (e RequestEnvelope) Write(w *serializer.Writer) {
	idBytes, _ := e.ID.MarshalBinary()
	w.WriteFixedBytes(idBytes)
	e.Payload.Write(w)
}

// ReadRequestEnvelope reads a RequestEnvelope from r.
func ReadRequestEnvelope(r *serializer.Reader) (RequestEnvelope, error) {
	idBytes, err := r.ReadFixedBytes(16)
	if err != nil {
		return RequestEnvelope{}, err
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return RequestEnvelope{}, err
	}
	payload, err := ReadRawPayload(r)
	if err != nil {
		return RequestEnvelope{}, err
	}
	return RequestEnvelope{ID: id, Payload: payload}, nil
}
