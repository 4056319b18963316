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

import "fmt"

// Command rejection reasons. These never cross the handle as return values;
// the actor stringifies them into CommandFailed events.

// PublishError rejects a Publish command.
type PublishError struct {
	Topic  string
	Reason string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed on topic %s: %s", e.Topic, e.Reason)
}

// SubscribeError rejects a Subscribe command.
type SubscribeError struct {
	Topic  string
	Reason string
}

func (e *SubscribeError) Error() string {
	return fmt.Sprintf("subscribe failed on topic %s: %s", e.Topic, e.Reason)
}

// UnsubscribeError rejects an Unsubscribe command.
type UnsubscribeError struct {
	Topic  string
	Reason string
}

func (e *UnsubscribeError) Error() string {
	return fmt.Sprintf("unsubscribe failed on topic %s: %s", e.Topic, e.Reason)
}

// DialError rejects a Dial command.
type DialError struct {
	Addr   string
	Reason string
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial failed to %s: %s", e.Addr, e.Reason)
}

// DhtError rejects a DHT command that the sub-behavior refused to accept.
type DhtError struct {
	Key    string
	Reason string
}

func (e *DhtError) Error() string {
	return fmt.Sprintf("dht operation failed for key %s: %s", e.Key, e.Reason)
}
