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

	mapset "github.com/deckarep/golang-set/v2"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/peernet/go-peernet/common"
)

// pendingKind tags the command a tracked DHT query originated from.
type pendingKind int

const (
	pendingGetRecord pendingKind = iota
	pendingPutRecord
	pendingGetProviders
	pendingStartProviding
)

func (k pendingKind) String() string {
	switch k {
	case pendingGetRecord:
		return "get_record"
	case pendingPutRecord:
		return "put_record"
	case pendingGetProviders:
		return "get_providers"
	case pendingStartProviding:
		return "start_providing"
	default:
		return "unknown"
	}
}

// pendingQuery carries enough context to construct the completion event for
// an outstanding DHT command.
type pendingQuery struct {
	kind pendingKind
	key  common.DhtKey
}

// topicSub bundles the live handles of one local topic subscription. cancel
// stops the subscription's reader goroutines.
type topicSub struct {
	sub    *pubsub.Subscription
	events *pubsub.TopicEventHandler
	cancel context.CancelFunc
}

// actorState is the bookkeeping the event loop consults. It is owned
// exclusively by the actor goroutine; no lock protects it because no other
// goroutine touches it.
type actorState struct {
	localID        peer.ID
	connectedPeers mapset.Set[peer.ID]
	subscriptions  map[string]*topicSub

	// pending correlates actor-issued query ids with the originating DHT
	// command. Append-only during command handling, strictly decreasing
	// during result handling.
	pending map[uint64]pendingQuery
}

func newActorState(localID peer.ID) *actorState {
	return &actorState{
		localID:        localID,
		connectedPeers: mapset.NewSet[peer.ID](),
		subscriptions:  make(map[string]*topicSub),
		pending:        make(map[uint64]pendingQuery),
	}
}

func (s *actorState) isSubscribed(topic common.TopicName) bool {
	_, ok := s.subscriptions[topic.String()]
	return ok
}

func (s *actorState) addSubscription(topic common.TopicName, ts *topicSub) {
	s.subscriptions[topic.String()] = ts
}

// removeSubscription drops a subscription without touching its handles.
func (s *actorState) removeSubscription(topic common.TopicName) *topicSub {
	ts := s.subscriptions[topic.String()]
	delete(s.subscriptions, topic.String())
	return ts
}

func (s *actorState) trackQuery(id uint64, q pendingQuery) {
	s.pending[id] = q
}

// completeQuery removes and returns the pending entry for id. Each entry is
// removed exactly once; a second completion for the same id reports false.
func (s *actorState) completeQuery(id uint64) (pendingQuery, bool) {
	q, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return q, ok
}
