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
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tos-network/terminos/common"
	"github.com/tos-network/terminos/internal/serializer"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	frame := EncodePacket(PacketPing, []byte("hello"))
	require.Equal(t, byte(PacketPing), frame[0])

	id, body, err := DecodePacket(frame)
	require.NoError(t, err)
	require.Equal(t, PacketPing, id)
	require.Equal(t, []byte("hello"), body)
}

func TestDecodePacketRejectsUnknownTag(t *testing.T) {
	_, _, err := DecodePacket([]byte{0xff, 1, 2, 3})
	require.ErrorIs(t, err, ErrUnknownPacketTag)
}

func TestDecodePacketRejectsOversizedFrame(t *testing.T) {
	huge := make([]byte, MaxPacketSize+1)
	_, _, err := DecodePacket(huge)
	require.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestDecodePacketRejectsEmptyFrame(t *testing.T) {
	_, _, err := DecodePacket(nil)
	require.ErrorIs(t, err, ErrEmptyPacket)
}

func TestPacketIDCountAndTagTable(t *testing.T) {
	require.Equal(t, uint8(14), PacketIDCount)
}

func TestOrderDependentClassification(t *testing.T) {
	dependent := []PacketID{
		PacketHandshake, PacketTransactionPropagation, PacketBlockPropagation,
		PacketInventoryResponse, PacketBootstrap, PacketKeyExchange,
	}
	for _, id := range dependent {
		require.True(t, id.OrderDependent(), "%s should be order-dependent", id)
	}

	independent := []PacketID{
		PacketPing, PacketObjectRequest, PacketObjectResponse,
		PacketChainRequest, PacketChainResponse, PacketNotifyInvRequest,
		PacketNotifyInvResponse, PacketPeerDisconnected,
	}
	for _, id := range independent {
		require.False(t, id.OrderDependent(), "%s should be order-independent", id)
	}
}

func TestHandshakePayloadRoundTripAndMatches(t *testing.T) {
	w := serializer.NewWriter()
	payload := HandshakePayload{NetworkID: NetworkID}
	payload.Write(w)

	r := serializer.NewReader(w.Bytes())
	decoded, err := ReadHandshakePayload(r)
	require.NoError(t, err)
	require.True(t, decoded.Matches())
}

func TestPacketWrapperRoundTrip(t *testing.T) {
	w := serializer.NewWriter()
	wrapper := PacketWrapper[RawPayload]{Body: RawPayload{Bytes: []byte("payload")}, Ping: PingPayload{Nonce: 7}}
	wrapper.Write(w)

	r := serializer.NewReader(w.Bytes())
	decoded, err := ReadPacketWrapper(r, ReadRawPayload)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), decoded.Body.Bytes)
	require.Equal(t, uint64(7), decoded.Ping.Nonce)
	require.Equal(t, 0, r.Remaining())
}

func TestPacketWrapperTrailingBytesAreLogOnly(t *testing.T) {
	w := serializer.NewWriter()
	wrapper := PacketWrapper[RawPayload]{Body: RawPayload{Bytes: []byte("x")}, Ping: PingPayload{Nonce: 1}}
	wrapper.Write(w)
	withTrailer := append(w.Bytes(), 0xde, 0xad)

	r := serializer.NewReader(withTrailer)
	decoded, err := ReadPacketWrapper(r, ReadRawPayload)
	require.NoError(t, err) // trailing bytes never become an error
	require.Equal(t, []byte("x"), decoded.Body.Bytes)
	require.Equal(t, 2, r.Remaining())
}

func TestRequestEnvelopeRoundTrip(t *testing.T) {
	env := NewRequestEnvelope([]byte("request body"))
	w := serializer.NewWriter()
	env.Write(w)

	r := serializer.NewReader(w.Bytes())
	decoded, err := ReadRequestEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, env.ID, decoded.ID)
	require.True(t, bytes.Equal(env.Payload.Bytes, decoded.Payload.Bytes))
}

func TestInventoryTrackerDedup(t *testing.T) {
	tr := NewInventoryTracker()
	h := common.NewHash([]byte("block-1"))

	require.True(t, tr.MarkSeen(h))
	require.False(t, tr.MarkSeen(h))
	require.True(t, tr.Has(h))
}

func TestInventoryTrackerFilterUnseen(t *testing.T) {
	tr := NewInventoryTracker()
	h1 := common.NewHash([]byte("a"))
	h2 := common.NewHash([]byte("b"))
	tr.MarkSeen(h1)

	unseen := tr.FilterUnseen([]common.Hash{h1, h2})
	require.Equal(t, []common.Hash{h2}, unseen)
	require.True(t, tr.Has(h2))
}

func TestPeerDispatcherOrderedPacketsProcessInReceiptOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	d := NewPeerDispatcher(func(pkt InboundPacket) {
		mu.Lock()
		seen = append(seen, int(pkt.Body[0]))
		mu.Unlock()
	})
	defer d.Close()

	for i := 0; i < 5; i++ {
		require.True(t, d.Submit(InboundPacket{ID: PacketHandshake, Body: []byte{byte(i)}}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestPeerDispatcherObjectRequestConcurrencyCap(t *testing.T) {
	var inFlight int32
	var maxObserved int32
	release := make(chan struct{})

	d := NewPeerDispatcher(func(pkt InboundPacket) {
		if pkt.ID != PacketObjectRequest {
			return
		}
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxObserved)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxObserved, prev, cur) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inFlight, -1)
	})
	defer func() {
		close(release)
		d.Close()
	}()

	for i := 0; i < PeerObjectsConcurrency+10; i++ {
		d.Submit(InboundPacket{ID: PacketObjectRequest})
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&maxObserved) == PeerObjectsConcurrency
	}, time.Second, time.Millisecond)
}
