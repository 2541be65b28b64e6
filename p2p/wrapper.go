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

import "github.com/tos-network/terminos/internal/serializer"

// PingPayload is the keep-alive trailer appended to every packet body
// (PacketWrapper<T> = body(T) ‖ Ping), piggybacking liveness/latency
// measurement onto whatever else a peer is already sending.
type PingPayload struct {
	Nonce uint64
}

func (p PingPayload) Write(w *serializer.Writer) {
	w.WriteU64(p.Nonce)
}

// ReadPingPayload reads a PingPayload trailer from r.
func ReadPingPayload(r *serializer.Reader) (PingPayload, error) {
	nonce, err := r.ReadU64()
	if err != nil {
		return PingPayload{}, err
	}
	return PingPayload{Nonce: nonce}, nil
}

// PacketWrapper is a packet body concatenated with its Ping trailer:
// body(T) ‖ Ping.
type PacketWrapper[T serializer.Serializable] struct {
	Body T
	Ping PingPayload
}

func (w PacketWrapper[T]) Write(out *serializer.Writer) {
	w.Body.Write(out)
	w.Ping.Write(out)
}

// ReadPacketWrapper decodes a PacketWrapper given readBody, the
// caller-supplied decoder for the wrapped body type T. Any bytes left
// over after the Ping trailer are surfaced as a log-only warning,
// never as an error — a peer running a newer wire format should not
// be disconnected over trailing fields it doesn't know about yet.
func ReadPacketWrapper[T serializer.Serializable](r *serializer.Reader, readBody func(*serializer.Reader) (T, error)) (PacketWrapper[T], error) {
	body, err := readBody(r)
	if err != nil {
		var zero PacketWrapper[T]
		return zero, err
	}
	ping, err := ReadPingPayload(r)
	if err != nil {
		var zero PacketWrapper[T]
		return zero, err
	}
	if remaining := r.Remaining(); remaining > 0 {
		logger.Warn("packet wrapper has trailing bytes", "remaining", remaining)
	}
	return PacketWrapper[T]{Body: body, Ping: ping}, nil
}
