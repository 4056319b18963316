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
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	record "github.com/libp2p/go-libp2p-record"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	noise "github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/multiformats/go-multihash"

	"github.com/peernet/go-peernet/common"
)

// DefaultTopic is the distinguished topic targeted by the handle's publish
// convenience and subscribed at startup by default.
const DefaultTopic = "peernet-global"

const (
	// kademliaPrefix yields the DHT protocol id /peernet/kad/1.0.0.
	kademliaPrefix = protocol.ID("/peernet")

	// recordNamespace is the validated key namespace for DHT records.
	recordNamespace = "peernet"

	// queryTimeout bounds every outstanding DHT query.
	queryTimeout = 60 * time.Second

	// idleConnTimeout is the grace period before unused connections are
	// eligible for pruning.
	idleConnTimeout = 60 * time.Second
)

// Config collects the recognized swarm options. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// Port is the TCP listen port on all IPv4 interfaces. 0 picks an
	// ephemeral port.
	Port uint16

	// Keypair is the node identity. Nil generates a fresh Ed25519 keypair.
	Keypair crypto.PrivKey

	// MdnsQueryInterval bounds how often a locally discovered peer is
	// redialed.
	MdnsQueryInterval time.Duration

	// GossipsubHeartbeat is the gossip mesh maintenance interval.
	GossipsubHeartbeat time.Duration

	// InitialTopics are subscribed before Started is emitted.
	InitialTopics []common.TopicName

	// KademliaReplication is the query replication factor. Must be > 0.
	KademliaReplication int
}

// DefaultConfig returns the stock configuration: ephemeral port, generated
// identity, 5s mDNS interval, 1s gossip heartbeat, the default topic and a
// replication factor of 3.
func DefaultConfig() Config {
	return Config{
		Port:                0,
		MdnsQueryInterval:   5 * time.Second,
		GossipsubHeartbeat:  time.Second,
		InitialTopics:       []common.TopicName{common.NewTopicNameUnchecked(DefaultTopic)},
		KademliaReplication: 3,
	}
}

// withDefaults fills unset durations and topics so a partially populated
// Config behaves like DefaultConfig for the omitted fields.
func (c Config) withDefaults() Config {
	if c.MdnsQueryInterval <= 0 {
		c.MdnsQueryInterval = 5 * time.Second
	}
	if c.GossipsubHeartbeat <= 0 {
		c.GossipsubHeartbeat = time.Second
	}
	if c.InitialTopics == nil {
		c.InitialTopics = []common.TopicName{common.NewTopicNameUnchecked(DefaultTopic)}
	}
	if c.KademliaReplication == 0 {
		c.KademliaReplication = 3
	}
	return c
}

// swarm aggregates the transport host and the three sub-behaviors into the
// one object the actor owns.
type swarm struct {
	host    host.Host
	pubsub  *pubsub.PubSub
	dht     *dht.IpfsDHT
	mdns    mdns.Service
	localID peer.ID

	// topics caches joined pubsub topics for the life of the swarm; go-libp2p
	// pubsub forbids joining the same topic handle twice.
	topics map[string]*pubsub.Topic
}

// buildSwarm deterministically constructs the transport, identity and the
// three sub-behaviors from cfg. The host is built without listen addresses;
// the actor binds the listener during startup. The mDNS service is created
// but not started until the host listens.
func buildSwarm(ctx context.Context, cfg Config, discovery mdns.Notifee) (*swarm, error) {
	if cfg.KademliaReplication <= 0 {
		return nil, &common.ValidationError{Field: "kademlia_replication", Reason: "must be greater than zero"}
	}

	key := cfg.Keypair
	if key == nil {
		var err error
		key, _, err = crypto.GenerateEd25519Key(rand.Reader)
		if err != nil {
			return nil, &common.TransportError{Reason: err.Error()}
		}
	}

	cm, err := connmgr.NewConnManager(32, 128, connmgr.WithGracePeriod(idleConnTimeout))
	if err != nil {
		return nil, &common.TransportError{Reason: err.Error()}
	}

	h, err := libp2p.New(
		libp2p.Identity(key),
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Security(noise.ID, noise.New),
		libp2p.Muxer(yamux.ID, yamux.DefaultTransport),
		libp2p.ConnectionManager(cm),
		libp2p.NoListenAddrs,
	)
	if err != nil {
		return nil, &common.TransportError{Reason: err.Error()}
	}

	kad, err := dht.New(ctx, h,
		dht.Mode(dht.ModeServer),
		dht.ProtocolPrefix(kademliaPrefix),
		dht.NamespacedValidator(recordNamespace, recordValidator{}),
		dht.Resiliency(cfg.KademliaReplication),
	)
	if err != nil {
		h.Close()
		return nil, &common.TransportError{Reason: err.Error()}
	}

	params := pubsub.DefaultGossipSubParams()
	params.HeartbeatInterval = cfg.GossipsubHeartbeat

	ps, err := pubsub.NewGossipSub(ctx, h,
		pubsub.WithGossipSubParams(params),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictSign),
		pubsub.WithMessageIdFn(gossipMessageID),
		pubsub.WithMaxMessageSize(common.MaxGossipPayloadLen+64*1024),
	)
	if err != nil {
		kad.Close()
		h.Close()
		return nil, &common.TransportError{Reason: err.Error()}
	}

	// Empty service name selects the standard _p2p._udp mDNS service.
	svc := mdns.NewMdnsService(h, "", discovery)

	return &swarm{
		host:    h,
		pubsub:  ps,
		dht:     kad,
		mdns:    svc,
		localID: h.ID(),
		topics:  make(map[string]*pubsub.Topic),
	}, nil
}

// joinTopic returns the cached topic handle, joining on first use.
func (s *swarm) joinTopic(name string) (*pubsub.Topic, error) {
	if t, ok := s.topics[name]; ok {
		return t, nil
	}
	t, err := s.pubsub.Join(name)
	if err != nil {
		return nil, err
	}
	s.topics[name] = t
	return t, nil
}

// Close releases the sub-behaviors and the host, dropping all sockets.
func (s *swarm) Close() error {
	var errs []error
	if s.mdns != nil {
		errs = append(errs, s.mdns.Close())
	}
	errs = append(errs, s.dht.Close(), s.host.Close())
	return errors.Join(errs...)
}

// gossipMessageID derives a stable message id from the message data and
// topic, so identical broadcasts deduplicate regardless of sender.
func gossipMessageID(m *pb.Message) string {
	h := sha256.New()
	h.Write(m.GetData())
	h.Write([]byte(m.GetTopic()))
	return string(h.Sum(nil))
}

// recordKey maps a DhtKey into the validated record namespace.
func recordKey(key common.DhtKey) string {
	return "/" + recordNamespace + "/" + key.String()
}

// providerKey derives the content id under which providers of key are
// advertised and looked up.
func providerKey(key common.DhtKey) (cid.Cid, error) {
	mh, err := multihash.Sum(key.Bytes(), multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// recordValidator admits any record whose value fits the DhtValue bound.
// Conflict resolution is first-wins; records carry no sequence numbers.
type recordValidator struct{}

var _ record.Validator = recordValidator{}

func (recordValidator) Validate(key string, value []byte) error {
	if len(value) > common.MaxDhtValueLen {
		return &common.ValidationError{Field: "dht_value", Reason: "exceeds 64KB limit"}
	}
	return nil
}

func (recordValidator) Select(key string, values [][]byte) (int, error) {
	if len(values) == 0 {
		return 0, errors.New("no values to select from")
	}
	return 0, nil
}
