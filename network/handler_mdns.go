// Copyright 2025 The go-peernet Authors
// This file is part of the go-peernet library.
//
// The go-peernet library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-peernet library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-peernet library. If not, see <http://www.gnu.org/licenses/>.

package network

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
)

// mdnsNotifee forwards local-network discoveries into the actor loop.
type mdnsNotifee struct {
	a *actor
}

func (n *mdnsNotifee) HandlePeerFound(info peer.AddrInfo) {
	n.a.deliver(peerFound{info: info})
}

// handleDiscovery runs the discovery→dial chain: announce the peer, register
// its addresses for routing, then dial. The dial is best-effort — its
// success is observed later as a connection-established transition, and
// errors are swallowed because the handler runs autonomously in response to
// background discovery.
func (a *actor) handleDiscovery(e peerFound) {
	info := e.info
	if info.ID == a.state.localID || a.state.connectedPeers.Contains(info.ID) {
		return
	}
	a.emit(PeerDiscovered{PeerID: info.ID})
	a.log.Debug("Peer discovered", "peer", info.ID, "addrs", len(info.Addrs))

	a.swarm.host.Peerstore().AddAddrs(info.ID, info.Addrs, peerstore.TempAddrTTL)
	a.addToRoutingTable(info.ID)

	// mDNS re-announces every query interval; dial each peer at most once
	// per interval.
	if _, dialed := a.recentDials.Get(info.ID); dialed {
		return
	}
	a.recentDials.Add(info.ID, struct{}{})
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, dialTimeout)
		defer cancel()
		_ = a.swarm.host.Connect(ctx, info)
	}()
}
