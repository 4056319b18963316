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
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peernet/go-peernet/common"
)

// newBareActor builds an actor with state and an event channel but no swarm,
// enough to exercise the dispatch logic that never touches the transport.
func newBareActor(t *testing.T) (*actor, chan Event) {
	t.Helper()
	events := make(chan Event, channelCapacity)
	a := &actor{
		state:  newActorState(testPeerID(t)),
		events: events,
		raw:    make(chan rawEvent, channelCapacity),
		ctx:    context.Background(),
		log:    log.New("actor", "test"),
	}
	return a, events
}

func drainOne(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	default:
		t.Fatal("expected an event, channel empty")
		return nil
	}
}

func assertNoEvent(t *testing.T, events chan Event) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("expected no event, got %T", ev)
	default:
	}
}

func TestQueryDoneGetRecord(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "shared")

	id := a.trackQuery(pendingGetRecord, key)
	a.handleQueryDone(queryDone{id: id, value: []byte(`{"data":true}`)})

	ev := drainOne(t, events)
	found, ok := ev.(RecordFound)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, key, found.Key)
	assert.Equal(t, []byte(`{"data":true}`), found.Value.Bytes())
	assert.Empty(t, a.state.pending)
}

func TestQueryDoneGetRecordError(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "missing")

	id := a.trackQuery(pendingGetRecord, key)
	a.handleQueryDone(queryDone{id: id, err: errors.New("routing: not found")})

	ev := drainOne(t, events)
	notFound, ok := ev.(RecordNotFound)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, key, notFound.Key)
}

func TestQueryDonePutRecord(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "shared")

	id := a.trackQuery(pendingPutRecord, key)
	a.handleQueryDone(queryDone{id: id})
	ev := drainOne(t, events)
	stored, ok := ev.(RecordStored)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, key, stored.Key)

	id = a.trackQuery(pendingPutRecord, key)
	a.handleQueryDone(queryDone{id: id, err: errors.New("quorum failed")})
	ev = drainOne(t, events)
	failed, ok := ev.(RecordStoreFailed)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "quorum failed", failed.Reason)
}

func TestQueryDoneStartProviding(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "content")

	id := a.trackQuery(pendingStartProviding, key)
	a.handleQueryDone(queryDone{id: id})
	ev := drainOne(t, events)
	_, ok := ev.(ProviderRecordStored)
	require.True(t, ok, "got %T", ev)

	// A failed provide has no terminal event but still clears the entry.
	id = a.trackQuery(pendingStartProviding, key)
	a.handleQueryDone(queryDone{id: id, err: errors.New("lookup failed")})
	assertNoEvent(t, events)
	assert.Empty(t, a.state.pending)
}

func TestQueryDoneGetProviders(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "content")
	providers := []peer.ID{testPeerID(t), testPeerID(t)}

	id := a.trackQuery(pendingGetProviders, key)
	a.handleQueryDone(queryDone{id: id, providers: providers})
	ev := drainOne(t, events)
	found, ok := ev.(ProvidersFound)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, providers, found.Providers)

	// No providers: entry cleared, nothing emitted.
	id = a.trackQuery(pendingGetProviders, key)
	a.handleQueryDone(queryDone{id: id})
	assertNoEvent(t, events)
	assert.Empty(t, a.state.pending)
}

func TestQueryDoneUncorrelated(t *testing.T) {
	a, events := newBareActor(t)
	a.handleQueryDone(queryDone{id: 42})
	assertNoEvent(t, events)
}

func TestQueryDoneDeliveredOnce(t *testing.T) {
	a, events := newBareActor(t)
	key := mustKey(t, "shared")

	id := a.trackQuery(pendingPutRecord, key)
	a.handleQueryDone(queryDone{id: id})
	_ = drainOne(t, events)

	// A second result for the same id no longer correlates.
	a.handleQueryDone(queryDone{id: id})
	assertNoEvent(t, events)
}

func TestGossipMessageEmitted(t *testing.T) {
	a, events := newBareActor(t)
	src := testPeerID(t)

	a.handleGossipMessage(gossipMessageIn{topic: DefaultTopic, src: src, data: []byte("hello from node1")})

	ev := drainOne(t, events)
	msg, ok := ev.(GossipMessage)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, src, msg.Source)
	assert.Equal(t, DefaultTopic, msg.Topic.String())
	text, isText := msg.Payload.Text()
	require.True(t, isText)
	assert.Equal(t, "hello from node1", text)
}

func TestGossipMessageOwnSourceDropped(t *testing.T) {
	a, events := newBareActor(t)
	a.handleGossipMessage(gossipMessageIn{topic: DefaultTopic, src: a.state.localID, data: []byte("echo")})
	assertNoEvent(t, events)
}

func TestGossipMessageOversizedPayloadDegrades(t *testing.T) {
	a, events := newBareActor(t)
	a.handleGossipMessage(gossipMessageIn{
		topic: DefaultTopic,
		src:   testPeerID(t),
		data:  make([]byte, common.MaxGossipPayloadLen+1),
	})

	ev := drainOne(t, events)
	msg, ok := ev.(GossipMessage)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, 0, msg.Payload.Len())
}

func TestTopicPeerChange(t *testing.T) {
	a, events := newBareActor(t)
	p := testPeerID(t)

	a.handleTopicPeerChange(topicPeerChange{topic: "chat", peer: p, joined: true})
	ev := drainOne(t, events)
	sub, ok := ev.(PeerSubscribed)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, p, sub.PeerID)
	assert.Equal(t, "chat", sub.Topic.String())

	a.handleTopicPeerChange(topicPeerChange{topic: "chat", peer: p, joined: false})
	ev = drainOne(t, events)
	unsub, ok := ev.(PeerUnsubscribed)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, p, unsub.PeerID)
}

func TestDiscoverySelfPeerIgnored(t *testing.T) {
	a, events := newBareActor(t)
	a.handleDiscovery(peerFound{info: peer.AddrInfo{ID: a.state.localID}})
	assertNoEvent(t, events)
}

func TestDiscoveryConnectedPeerIgnored(t *testing.T) {
	a, events := newBareActor(t)
	p := testPeerID(t)
	a.state.connectedPeers.Add(p)

	a.handleDiscovery(peerFound{info: peer.AddrInfo{ID: p}})
	assertNoEvent(t, events)
}

func TestPublishRequiresSubscription(t *testing.T) {
	a, events := newBareActor(t)
	topic := mustTopic(t, "not-subscribed-topic")

	err := a.publish(Publish{Topic: topic, Payload: common.EmptyGossipPayload()})
	require.Error(t, err)
	var perr *PublishError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "not subscribed", perr.Reason)
	assertNoEvent(t, events)
}

func TestUnsubscribeRequiresSubscription(t *testing.T) {
	a, _ := newBareActor(t)
	topic := mustTopic(t, "never-subscribed")

	err := a.unsubscribe(topic)
	require.Error(t, err)
	var uerr *UnsubscribeError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "not subscribed", uerr.Reason)
}
