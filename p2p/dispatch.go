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

import "sync"

// PeerChannelSize bounds each per-peer inbound channel.
const PeerChannelSize = 1024

// PeerObjectsConcurrency caps how many ObjectRequest packets may be
// handled concurrently across the whole dispatcher.
const PeerObjectsConcurrency = 64

// InboundPacket is a decoded, tag-classified packet waiting to be
// routed to its handler.
type InboundPacket struct {
	ID   PacketID
	Body []byte
}

// PeerDispatcher routes a peer's inbound packets to handler:
// order-dependent packets run one at a time, in receipt order, on a
// dedicated goroutine; order-independent packets each run on their
// own goroutine as they arrive, with ObjectRequest additionally
// throttled by a dispatcher-wide semaphore so a burst of object
// fetches cannot starve every other packet kind or exhaust resources.
type PeerDispatcher struct {
	handler     func(InboundPacket)
	orderedCh   chan InboundPacket
	unorderedCh chan InboundPacket
	objectSem   chan struct{}
	stopCh      chan struct{}
	pumps       sync.WaitGroup
	inFlight    sync.WaitGroup
}

// NewPeerDispatcher starts the dispatcher's pump goroutines and
// begins routing to handler.
func NewPeerDispatcher(handler func(InboundPacket)) *PeerDispatcher {
	d := &PeerDispatcher{
		handler:     handler,
		orderedCh:   make(chan InboundPacket, PeerChannelSize),
		unorderedCh: make(chan InboundPacket, PeerChannelSize),
		objectSem:   make(chan struct{}, PeerObjectsConcurrency),
		stopCh:      make(chan struct{}),
	}

	d.pumps.Add(2)
	go d.runOrdered()
	go d.pumpUnordered()

	return d
}

// Submit enqueues pkt onto the appropriate channel for its class,
// returning false if that channel is at capacity — backpressure the
// caller should treat as "slow down this peer", never block
// indefinitely.
func (d *PeerDispatcher) Submit(pkt InboundPacket) bool {
	ch := d.unorderedCh
	if pkt.ID.OrderDependent() {
		ch = d.orderedCh
	}
	select {
	case ch <- pkt:
		return true
	default:
		return false
	}
}

func (d *PeerDispatcher) runOrdered() {
	defer d.pumps.Done()
	for {
		select {
		case pkt := <-d.orderedCh:
			d.handler(pkt)
		case <-d.stopCh:
			return
		}
	}
}

// pumpUnordered spawns one goroutine per order-independent packet as
// it arrives, rather than feeding a fixed-size worker pool — the only
// concurrency limit order-independent packets have is objectSem, and
// a small worker pool would silently impose a tighter one.
func (d *PeerDispatcher) pumpUnordered() {
	defer d.pumps.Done()
	for {
		select {
		case pkt := <-d.unorderedCh:
			d.inFlight.Add(1)
			go func(p InboundPacket) {
				defer d.inFlight.Done()
				d.dispatchUnordered(p)
			}(pkt)
		case <-d.stopCh:
			return
		}
	}
}

func (d *PeerDispatcher) dispatchUnordered(pkt InboundPacket) {
	if pkt.ID != PacketObjectRequest {
		d.handler(pkt)
		return
	}
	d.objectSem <- struct{}{}
	defer func() { <-d.objectSem }()
	d.handler(pkt)
}

// Close stops the pump goroutines and waits for every in-flight
// handler invocation to finish.
func (d *PeerDispatcher) Close() {
	close(d.stopCh)
	d.pumps.Wait()
	d.inFlight.Wait()
}
