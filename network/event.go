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
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/peernet/go-peernet/common"
)

// Event is an observation emitted by the network actor. Events are plain
// values and safe to hand across goroutines.
type Event interface {
	eventName() string
}

// Started is the first event on the stream, emitted once the swarm listens
// and the initial topic subscriptions are in place.
type Started struct {
	LocalPeerID peer.ID
	ListeningOn ma.Multiaddr
}

// ShutdownComplete is the last event on the stream.
type ShutdownComplete struct{}

// Listening reports a new listen address.
type Listening struct {
	Address ma.Multiaddr
}

// PeerDiscovered reports a peer found by local-network discovery.
type PeerDiscovered struct {
	PeerID peer.ID
}

// PeerConnected reports the first established connection to a peer.
type PeerConnected struct {
	PeerID peer.ID
}

// PeerDisconnected reports the last connection to a peer closing.
type PeerDisconnected struct {
	PeerID peer.ID
}

// Subscribed reports a local topic subscription taking effect.
type Subscribed struct {
	Topic common.TopicName
}

// Unsubscribed reports a local topic subscription being removed.
type Unsubscribed struct {
	Topic common.TopicName
}

// PeerSubscribed reports a remote peer joining a topic.
type PeerSubscribed struct {
	PeerID peer.ID
	Topic  common.TopicName
}

// PeerUnsubscribed reports a remote peer leaving a topic.
type PeerUnsubscribed struct {
	PeerID peer.ID
	Topic  common.TopicName
}

// GossipMessage carries a received broadcast. Source is empty when the
// sub-behavior could not attribute the message.
type GossipMessage struct {
	Source  peer.ID
	Topic   common.TopicName
	Payload common.GossipPayload
}

// RecordStored reports a successful PutRecord.
type RecordStored struct {
	Key common.DhtKey
}

// RecordStoreFailed reports a failed PutRecord.
type RecordStoreFailed struct {
	Key    common.DhtKey
	Reason string
}

// RecordFound reports a successful GetRecord.
type RecordFound struct {
	Key   common.DhtKey
	Value common.DhtValue
}

// RecordNotFound reports a GetRecord that produced no record.
type RecordNotFound struct {
	Key common.DhtKey
}

// ProviderRecordStored reports a successful StartProviding.
type ProviderRecordStored struct {
	Key common.DhtKey
}

// ProvidersFound reports the providers located for a GetProviders.
type ProvidersFound struct {
	Key       common.DhtKey
	Providers []peer.ID
}

// RoutingUpdated reports a peer entering the DHT routing table.
type RoutingUpdated struct {
	PeerID peer.ID
}

// CommandFailed reports a command that reached the actor and was rejected by
// the swarm or by a cross-protocol invariant.
type CommandFailed struct {
	Reason string
}

func (Started) eventName() string              { return "started" }
func (ShutdownComplete) eventName() string     { return "shutdown_complete" }
func (Listening) eventName() string            { return "listening" }
func (PeerDiscovered) eventName() string       { return "peer_discovered" }
func (PeerConnected) eventName() string        { return "peer_connected" }
func (PeerDisconnected) eventName() string     { return "peer_disconnected" }
func (Subscribed) eventName() string           { return "subscribed" }
func (Unsubscribed) eventName() string         { return "unsubscribed" }
func (PeerSubscribed) eventName() string       { return "peer_subscribed" }
func (PeerUnsubscribed) eventName() string     { return "peer_unsubscribed" }
func (GossipMessage) eventName() string        { return "gossip_message" }
func (RecordStored) eventName() string         { return "record_stored" }
func (RecordStoreFailed) eventName() string    { return "record_store_failed" }
func (RecordFound) eventName() string          { return "record_found" }
func (RecordNotFound) eventName() string       { return "record_not_found" }
func (ProviderRecordStored) eventName() string { return "provider_record_stored" }
func (ProvidersFound) eventName() string       { return "providers_found" }
func (RoutingUpdated) eventName() string       { return "routing_updated" }
func (CommandFailed) eventName() string        { return "command_failed" }
