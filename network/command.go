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
	ma "github.com/multiformats/go-multiaddr"

	"github.com/peernet/go-peernet/common"
)

// Command is a request issued by an embedder to the network actor. Commands
// are plain values and safe to hand across goroutines. A successful send
// means "accepted for sequencing", not "executed": operational failures
// surface later as CommandFailed events.
type Command interface {
	commandName() string
}

// Shutdown terminates the actor loop. ShutdownComplete is emitted as the
// last event on the event channel.
type Shutdown struct{}

// Dial initiates a connection to the peer addressed by Addr. The address
// must carry a /p2p/ component identifying the remote peer.
type Dial struct {
	Addr ma.Multiaddr
}

// Subscribe subscribes the local node to a gossip topic.
type Subscribe struct {
	Topic common.TopicName
}

// Unsubscribe removes a local gossip topic subscription.
type Unsubscribe struct {
	Topic common.TopicName
}

// Publish broadcasts a payload on a topic the local node is subscribed to.
type Publish struct {
	Topic   common.TopicName
	Payload common.GossipPayload
}

// PutRecord stores a key/value record in the DHT.
type PutRecord struct {
	Key   common.DhtKey
	Value common.DhtValue
}

// GetRecord retrieves the record stored under Key.
type GetRecord struct {
	Key common.DhtKey
}

// StartProviding advertises the local node as a provider for Key.
type StartProviding struct {
	Key common.DhtKey
}

// GetProviders looks up peers providing Key.
type GetProviders struct {
	Key common.DhtKey
}

func (Shutdown) commandName() string       { return "shutdown" }
func (Dial) commandName() string           { return "dial" }
func (Subscribe) commandName() string      { return "subscribe" }
func (Unsubscribe) commandName() string    { return "unsubscribe" }
func (Publish) commandName() string        { return "publish" }
func (PutRecord) commandName() string      { return "put_record" }
func (GetRecord) commandName() string      { return "get_record" }
func (StartProviding) commandName() string { return "start_providing" }
func (GetProviders) commandName() string   { return "get_providers" }
