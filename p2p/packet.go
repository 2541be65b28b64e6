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

// Package p2p is the wire framing and packet classification layer for
// terminos's peer protocol: every packet is a tag byte followed by a
// body, tags are a fixed closed set, and packets split into
// order-dependent (must be processed in receipt order per peer) and
// order-independent (may run on any worker, any order) classes.
package p2p

import (
	"errors"

	"github.com/tos-network/terminos/internal/tlog"
)

var logger = tlog.NewModuleLogger(tlog.P2P)

// MaxPacketSize is the hard framing cap; a larger incoming frame is
// rejected before any parsing is attempted.
const MaxPacketSize = 5 * 1024 * 1024 // 5 MiB

// NetworkIDLength is the width of the handshake magic exchanged by
// peers to confirm they speak the same network.
const NetworkIDLength = 16

// NetworkID is terminos's network magic, exchanged during Handshake.
var NetworkID = [NetworkIDLength]byte{
	0x74, 0x65, 0x72, 0x6d, 0x69, 0x6e, 0x6f, 0x73,
	0x73, 0x6f, 0x6e, 0x69, 0x6d, 0x72, 0x65, 0x74,
}

// PacketID is the 1-byte discriminant tag identifying a packet's kind
// on the wire. The set is fixed and closed; an unrecognized tag is a
// protocol error, not a forward-compatibility signal.
type PacketID uint8

const (
	PacketHandshake PacketID = iota
	PacketTransactionPropagation
	PacketBlockPropagation
	PacketInventoryResponse
	PacketBootstrap
	PacketKeyExchange
	PacketPing
	PacketObjectRequest
	PacketObjectResponse
	PacketChainRequest
	PacketChainResponse
	PacketNotifyInvRequest
	PacketNotifyInvResponse
	PacketPeerDisconnected

	packetIDCount
)

// PacketIDCount is the number of distinct packet kinds; valid tags are
// [0, PacketIDCount).
const PacketIDCount = uint8(packetIDCount)

// OrderDependent reports whether a packet of this kind must be
// processed in the order it was received from a given peer.
// Handshake, propagation, inventory-response, bootstrap and
// key-exchange establish or mutate session state a peer's later
// packets depend on; everything else may be handled by any worker in
// any order.
func (id PacketID) OrderDependent() bool {
	return id <= PacketKeyExchange
}

func (id PacketID) valid() bool {
	return id < PacketID(packetIDCount)
}

var packetNames = [...]string{
	PacketHandshake:              "handshake",
	PacketTransactionPropagation: "transaction_propagation",
	PacketBlockPropagation:       "block_propagation",
	PacketInventoryResponse:      "inventory_response",
	PacketBootstrap:              "bootstrap",
	PacketKeyExchange:            "key_exchange",
	PacketPing:                   "ping",
	PacketObjectRequest:          "object_request",
	PacketObjectResponse:         "object_response",
	PacketChainRequest:           "chain_request",
	PacketChainResponse:          "chain_response",
	PacketNotifyInvRequest:       "notify_inv_request",
	PacketNotifyInvResponse:      "notify_inv_response",
	PacketPeerDisconnected:       "peer_disconnected",
}

func (id PacketID) String() string {
	if !id.valid() {
		return "unknown"
	}
	return packetNames[id]
}

// ErrUnknownPacketTag is returned when a frame's leading byte is not
// one of the closed set of known PacketIDs.
var ErrUnknownPacketTag = errors.New("p2p: unknown packet tag")

// ErrPacketTooLarge is returned when a frame exceeds MaxPacketSize.
var ErrPacketTooLarge = errors.New("p2p: packet exceeds maximum size")

// ErrEmptyPacket is returned when a frame is too short to contain even
// a tag byte.
var ErrEmptyPacket = errors.New("p2p: empty packet")

// EncodePacket prepends id's tag byte to body.
func EncodePacket(id PacketID, body []byte) []byte {
	out := make([]byte, 0, 1+len(body))
	out = append(out, byte(id))
	out = append(out, body...)
	return out
}

// DecodePacket splits a framed packet into its tag and body,
// rejecting oversized frames and unknown tags.
func DecodePacket(frame []byte) (PacketID, []byte, error) {
	if len(frame) > MaxPacketSize {
		return 0, nil, ErrPacketTooLarge
	}
	if len(frame) < 1 {
		return 0, nil, ErrEmptyPacket
	}
	id := PacketID(frame[0])
	if !id.valid() {
		return 0, nil, ErrUnknownPacketTag
	}
	return id, frame[1:], nil
}
