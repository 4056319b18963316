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
	"github.com/peernet/go-peernet/common"
)

// Handle is the embedder-facing facade over the actor's two bounded
// channels. The embedder owns the handle; the actor owns everything else.
type Handle struct {
	commands chan<- Command
	events   <-chan Event
	done     <-chan struct{}
}

// Send enqueues a command for sequencing. It blocks while the command
// channel is full and fails once the actor has exited. A nil return means
// accepted, not executed: operational failures arrive as CommandFailed
// events.
func (h *Handle) Send(cmd Command) error {
	select {
	case <-h.done:
		return &common.SendFailedError{Actor: "network"}
	default:
	}
	select {
	case h.commands <- cmd:
		return nil
	case <-h.done:
		return &common.SendFailedError{Actor: "network"}
	}
}

// Recv awaits the next event. ok is false once the stream has closed after
// ShutdownComplete.
func (h *Handle) Recv() (Event, bool) {
	ev, ok := <-h.events
	return ev, ok
}

// Shutdown requests actor termination.
func (h *Handle) Shutdown() error {
	return h.Send(Shutdown{})
}

// Publish broadcasts payload on the default topic.
func (h *Handle) Publish(payload common.GossipPayload) error {
	return h.Send(Publish{Topic: common.NewTopicNameUnchecked(DefaultTopic), Payload: payload})
}

// Put stores a DHT record.
func (h *Handle) Put(key common.DhtKey, value common.DhtValue) error {
	return h.Send(PutRecord{Key: key, Value: value})
}

// Get retrieves a DHT record.
func (h *Handle) Get(key common.DhtKey) error {
	return h.Send(GetRecord{Key: key})
}

// AwaitStarted consumes events until the startup handshake completes and
// returns the Started event. It fails with a ChannelClosedError when the
// actor exits before starting.
func (h *Handle) AwaitStarted() (Started, error) {
	for {
		ev, ok := h.Recv()
		if !ok {
			return Started{}, &common.ChannelClosedError{Actor: "network", Reason: "closed before start"}
		}
		switch e := ev.(type) {
		case Started:
			return e, nil
		case ShutdownComplete:
			return Started{}, &common.ChannelClosedError{Actor: "network", Reason: "actor exited during startup"}
		}
	}
}
