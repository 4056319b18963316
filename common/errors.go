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

package common

import "fmt"

// ValidationError is returned by the value-domain constructors when an input
// violates a field invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// SendFailedError is returned by a handle's send when the owning actor has
// exited and no longer drains its command channel.
type SendFailedError struct {
	Actor string
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("send failed to %s actor: channel closed", e.Actor)
}

// ChannelClosedError is returned by embedder helpers that expect a handshake
// event but observe the event stream closing first.
type ChannelClosedError struct {
	Actor  string
	Reason string
}

func (e *ChannelClosedError) Error() string {
	return fmt.Sprintf("channel closed: %s actor, %s", e.Actor, e.Reason)
}

// TransportError is returned by the swarm builder when transport, identity or
// sub-behavior construction fails.
type TransportError struct {
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Reason)
}
