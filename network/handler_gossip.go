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

	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"github.com/peernet/go-peernet/common"
)

// readGossip drains one topic subscription into the actor loop. It exits
// when the subscription is cancelled or the actor stops.
func (a *actor) readGossip(ctx context.Context, sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		a.deliver(gossipMessageIn{topic: msg.GetTopic(), src: msg.GetFrom(), data: msg.Data})
	}
}

// readTopicEvents drains one topic's peer join/leave notifications into the
// actor loop.
func (a *actor) readTopicEvents(ctx context.Context, topic string, evts *pubsub.TopicEventHandler) {
	for {
		pe, err := evts.NextPeerEvent(ctx)
		if err != nil {
			return
		}
		a.deliver(topicPeerChange{topic: topic, peer: pe.Peer, joined: pe.Type == pubsub.PeerJoin})
	}
}

// handleGossipMessage translates a received broadcast. The topic is
// reconstructed from its echoed string form; an oversized payload degrades
// to empty because the local size invariant is advisory for remote senders.
func (a *actor) handleGossipMessage(e gossipMessageIn) {
	if e.src == a.state.localID {
		// The router loops locally published messages back to local
		// subscriptions; peers never observe them twice.
		return
	}
	payload, err := common.NewGossipPayload(e.data)
	if err != nil {
		payload = common.EmptyGossipPayload()
	}
	a.emit(GossipMessage{
		Source:  e.src,
		Topic:   common.NewTopicNameUnchecked(e.topic),
		Payload: payload,
	})
}

func (a *actor) handleTopicPeerChange(e topicPeerChange) {
	topic := common.NewTopicNameUnchecked(e.topic)
	if e.joined {
		a.emit(PeerSubscribed{PeerID: e.peer, Topic: topic})
		return
	}
	a.emit(PeerUnsubscribed{PeerID: e.peer, Topic: topic})
}
