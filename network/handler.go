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
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	p2pnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/peernet/go-peernet/common"
)

const (
	// channelCapacity bounds both the command and the event channel.
	// Back-pressure propagates: a slow embedder blocks the actor's emit and
	// a slow actor blocks the embedder's send.
	channelCapacity = 32

	// shutdownGrace bounds the final best-effort ShutdownComplete emit.
	shutdownGrace = time.Second

	// dialTimeout bounds outbound connection attempts.
	dialTimeout = 30 * time.Second

	// gossipPeerWeight is the connection-manager tag weight keeping
	// connected peers preferred as gossip propagation targets.
	gossipPeerWeight = 64

	gossipProtectTag = "peernet-gossip"

	// redialCacheSize bounds the discovery redial-dampening cache.
	redialCacheSize = 256
)

// Raw protocol events. The notifee callbacks, subscription readers and DHT
// workers funnel everything through one channel so the loop stays the single
// writer of actor state.

type connChange struct {
	peer      peer.ID
	addr      ma.Multiaddr
	connected bool
}

type newListenAddr struct {
	addr ma.Multiaddr
}

type gossipMessageIn struct {
	topic string
	src   peer.ID
	data  []byte
}

type topicPeerChange struct {
	topic  string
	peer   peer.ID
	joined bool
}

type peerFound struct {
	info peer.AddrInfo
}

type queryDone struct {
	id        uint64
	err       error
	value     []byte
	providers []peer.ID
}

type dialFailed struct {
	addr string
	err  error
}

// actor is the single sequential agent owning the swarm and all mutable
// state. It suspends only at the top of its loop, selecting among
// cancellation, the next command and the next raw protocol event; each
// branch runs to completion before the next suspension.
type actor struct {
	cfg   Config
	swarm *swarm
	state *actorState

	commands <-chan Command
	events   chan<- Event
	raw      chan rawEvent

	ctx       context.Context
	nextQuery uint64

	// recentDials dampens the discovery→dial chain: a peer dialed within
	// one mDNS query interval is not redialed.
	recentDials *lru.LRU[peer.ID, struct{}]

	log log.Logger
}

type rawEvent interface{}

// Spawn starts a network actor for cfg and returns its handle. The actor
// runs until a Shutdown command arrives or ctx is cancelled; either way
// ShutdownComplete is the last event before the event channel closes.
func Spawn(ctx context.Context, cfg Config) *Handle {
	commands := make(chan Command, channelCapacity)
	events := make(chan Event, channelCapacity)
	done := make(chan struct{})
	go run(ctx, cfg, commands, events, done)
	return &Handle{commands: commands, events: events, done: done}
}

func run(parent context.Context, cfg Config, commands chan Command, events chan Event, done chan struct{}) {
	cfg = cfg.withDefaults()
	logger := log.New("actor", "network")

	defer func() {
		// Best effort: a stalled embedder loses only this final signal.
		select {
		case events <- ShutdownComplete{}:
		case <-time.After(shutdownGrace):
		}
		// done before events, so a closed stream implies sends already fail.
		close(done)
		close(events)
	}()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a := &actor{
		cfg:         cfg,
		commands:    commands,
		events:      events,
		raw:         make(chan rawEvent, channelCapacity),
		ctx:         ctx,
		recentDials: lru.NewLRU[peer.ID, struct{}](redialCacheSize, nil, cfg.MdnsQueryInterval),
		log:         logger,
	}

	sw, err := buildSwarm(ctx, cfg, &mdnsNotifee{a: a})
	if err != nil {
		logger.Warn("Failed to build swarm", "err", err)
		return
	}
	defer sw.Close()

	a.swarm = sw
	a.state = newActorState(sw.localID)

	sw.host.Network().Notify(&connNotifee{a: a})

	listenAddr, err := ma.NewMultiaddr(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", cfg.Port))
	if err != nil {
		logger.Warn("Invalid listen address", "err", err)
		return
	}
	if err := sw.host.Network().Listen(listenAddr); err != nil {
		logger.Warn("Failed to listen", "addr", listenAddr, "err", err)
		return
	}
	addrs := sw.host.Network().ListenAddresses()
	if len(addrs) == 0 {
		logger.Warn("No listen address bound")
		return
	}
	listening := addrs[0]

	if err := sw.mdns.Start(); err != nil {
		// Discovery is best-effort; the node still serves dialed peers.
		logger.Warn("Failed to start mDNS discovery", "err", err)
	}

	for _, topic := range cfg.InitialTopics {
		if err := a.subscribeTopic(topic); err != nil {
			logger.Warn("Initial topic subscription failed", "topic", topic, "err", err)
		}
	}

	a.emit(Started{LocalPeerID: sw.localID, ListeningOn: listening})
	logger.Info("Network actor started", "peer", sw.localID, "addr", listening)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Cancellation observed, stopping actor")
			return
		case cmd := <-commands:
			commandsTotal.WithLabelValues(cmd.commandName()).Inc()
			if a.handleCommand(cmd) {
				logger.Info("Network actor stopping")
				return
			}
		case ev := <-a.raw:
			a.handleSwarmEvent(ev)
		}
	}
}

// emit delivers an event to the embedder, giving up only on cancellation.
func (a *actor) emit(ev Event) {
	select {
	case a.events <- ev:
		eventsTotal.WithLabelValues(ev.eventName()).Inc()
	case <-a.ctx.Done():
	}
}

// deliver funnels a raw protocol event into the loop. Called from notifee
// callbacks, subscription readers and query workers.
func (a *actor) deliver(ev rawEvent) {
	select {
	case a.raw <- ev:
	case <-a.ctx.Done():
	}
}

// handleCommand translates one command into at most one swarm operation.
// Rejections surface as CommandFailed events; the observable outcome of an
// accepted DHT command is deferred until its terminal result arrives.
func (a *actor) handleCommand(cmd Command) (shutdown bool) {
	var err error
	switch c := cmd.(type) {
	case Shutdown:
		return true
	case Dial:
		err = a.dial(c)
	case Subscribe:
		err = a.subscribe(c.Topic)
	case Unsubscribe:
		err = a.unsubscribe(c.Topic)
	case Publish:
		err = a.publish(c)
	case PutRecord:
		err = a.putRecord(c)
	case GetRecord:
		err = a.getRecord(c)
	case StartProviding:
		err = a.startProviding(c)
	case GetProviders:
		err = a.getProviders(c)
	default:
		a.log.Warn("Unknown command dropped", "command", cmd.commandName())
	}
	if err != nil {
		a.log.Debug("Command rejected", "command", cmd.commandName(), "err", err)
		a.emit(CommandFailed{Reason: err.Error()})
	}
	return false
}

func (a *actor) handleSwarmEvent(ev rawEvent) {
	switch e := ev.(type) {
	case connChange:
		a.handleConnChange(e)
	case newListenAddr:
		a.emit(Listening{Address: e.addr})
	case gossipMessageIn:
		a.handleGossipMessage(e)
	case topicPeerChange:
		a.handleTopicPeerChange(e)
	case peerFound:
		a.handleDiscovery(e)
	case queryDone:
		a.handleQueryDone(e)
	case dialFailed:
		a.emit(CommandFailed{Reason: (&DialError{Addr: e.addr, Reason: e.err.Error()}).Error()})
	}
}

func (a *actor) dial(c Dial) error {
	info, err := peer.AddrInfoFromP2pAddr(c.Addr)
	if err != nil {
		return &DialError{Addr: c.Addr.String(), Reason: err.Error()}
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, dialTimeout)
		defer cancel()
		if err := a.swarm.host.Connect(ctx, *info); err != nil {
			a.deliver(dialFailed{addr: c.Addr.String(), err: err})
		}
	}()
	return nil
}

func (a *actor) subscribe(topic common.TopicName) error {
	if err := a.subscribeTopic(topic); err != nil {
		return &SubscribeError{Topic: topic.String(), Reason: err.Error()}
	}
	return nil
}

// subscribeTopic is idempotent: re-subscribing an active topic is a no-op.
func (a *actor) subscribeTopic(topic common.TopicName) error {
	if a.state.isSubscribed(topic) {
		return nil
	}
	t, err := a.swarm.joinTopic(topic.String())
	if err != nil {
		return err
	}
	sub, err := t.Subscribe()
	if err != nil {
		return err
	}
	evts, err := t.EventHandler()
	if err != nil {
		sub.Cancel()
		return err
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.state.addSubscription(topic, &topicSub{sub: sub, events: evts, cancel: cancel})
	go a.readGossip(ctx, sub)
	go a.readTopicEvents(ctx, topic.String(), evts)
	return nil
}

func (a *actor) unsubscribe(topic common.TopicName) error {
	if !a.state.isSubscribed(topic) {
		return &UnsubscribeError{Topic: topic.String(), Reason: "not subscribed"}
	}
	ts := a.state.removeSubscription(topic)
	ts.cancel()
	ts.events.Cancel()
	ts.sub.Cancel()
	return nil
}

// publish enforces the cross-protocol invariant that only subscribers may
// publish, without touching the swarm on violation.
func (a *actor) publish(c Publish) error {
	if !a.state.isSubscribed(c.Topic) {
		return &PublishError{Topic: c.Topic.String(), Reason: "not subscribed"}
	}
	t, err := a.swarm.joinTopic(c.Topic.String())
	if err != nil {
		return &PublishError{Topic: c.Topic.String(), Reason: err.Error()}
	}
	if err := t.Publish(a.ctx, c.Payload.Bytes()); err != nil {
		return &PublishError{Topic: c.Topic.String(), Reason: err.Error()}
	}
	return nil
}

// handleConnChange tracks the connected peer set. Only the first established
// connection to a peer and the close of its last connection are material.
func (a *actor) handleConnChange(e connChange) {
	if e.connected {
		if a.state.connectedPeers.Contains(e.peer) {
			return
		}
		a.state.connectedPeers.Add(e.peer)
		connectedPeersGauge.Set(float64(a.state.connectedPeers.Cardinality()))
		cm := a.swarm.host.ConnManager()
		cm.TagPeer(e.peer, gossipProtectTag, gossipPeerWeight)
		cm.Protect(e.peer, gossipProtectTag)
		if e.addr != nil {
			a.swarm.host.Peerstore().AddAddrs(e.peer, []ma.Multiaddr{e.addr}, peerstore.ConnectedAddrTTL)
		}
		a.addToRoutingTable(e.peer)
		a.emit(PeerConnected{PeerID: e.peer})
		a.log.Info("Peer connected", "peer", e.peer)
		return
	}
	if !a.state.connectedPeers.Contains(e.peer) {
		return
	}
	if len(a.swarm.host.Network().ConnsToPeer(e.peer)) > 0 {
		return
	}
	a.state.connectedPeers.Remove(e.peer)
	connectedPeersGauge.Set(float64(a.state.connectedPeers.Cardinality()))
	a.swarm.host.ConnManager().Unprotect(e.peer, gossipProtectTag)
	a.emit(PeerDisconnected{PeerID: e.peer})
	a.log.Info("Peer disconnected", "peer", e.peer)
}

// addToRoutingTable registers a peer in the DHT routing table and reports
// the update when the table accepts it.
func (a *actor) addToRoutingTable(p peer.ID) {
	added, err := a.swarm.dht.RoutingTable().TryAddPeer(p, true, false)
	if err != nil || !added {
		return
	}
	a.emit(RoutingUpdated{PeerID: p})
}

// connNotifee forwards connection lifecycle transitions into the actor loop.
type connNotifee struct {
	a *actor
}

func (n *connNotifee) Connected(_ p2pnet.Network, c p2pnet.Conn) {
	n.a.deliver(connChange{peer: c.RemotePeer(), addr: c.RemoteMultiaddr(), connected: true})
}

func (n *connNotifee) Disconnected(_ p2pnet.Network, c p2pnet.Conn) {
	n.a.deliver(connChange{peer: c.RemotePeer(), connected: false})
}

func (n *connNotifee) Listen(_ p2pnet.Network, addr ma.Multiaddr) {
	n.a.deliver(newListenAddr{addr: addr})
}

func (n *connNotifee) ListenClose(p2pnet.Network, ma.Multiaddr) {}
