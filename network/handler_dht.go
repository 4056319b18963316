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

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/peernet/go-peernet/common"
)

// DHT command handling. Each accepted command gets an actor-issued query id
// and a worker goroutine running the blocking kad-dht call; the worker's
// terminal result re-enters the loop as a queryDone and is correlated back
// through the outstanding-query map. Workers never touch actor state.

// trackQuery issues the next query id and records the pending command.
func (a *actor) trackQuery(kind pendingKind, key common.DhtKey) uint64 {
	a.nextQuery++
	id := a.nextQuery
	a.state.trackQuery(id, pendingQuery{kind: kind, key: key})
	outstandingQueriesGauge.Set(float64(len(a.state.pending)))
	return id
}

func (a *actor) putRecord(c PutRecord) error {
	id := a.trackQuery(pendingPutRecord, c.Key)
	value := c.Value.Bytes()
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, queryTimeout)
		defer cancel()
		err := a.swarm.dht.PutValue(ctx, recordKey(c.Key), value)
		a.deliver(queryDone{id: id, err: err})
	}()
	return nil
}

func (a *actor) getRecord(c GetRecord) error {
	id := a.trackQuery(pendingGetRecord, c.Key)
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, queryTimeout)
		defer cancel()
		value, err := a.swarm.dht.GetValue(ctx, recordKey(c.Key))
		a.deliver(queryDone{id: id, err: err, value: value})
	}()
	return nil
}

func (a *actor) startProviding(c StartProviding) error {
	key, err := providerKey(c.Key)
	if err != nil {
		return &DhtError{Key: c.Key.String(), Reason: err.Error()}
	}
	id := a.trackQuery(pendingStartProviding, c.Key)
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, queryTimeout)
		defer cancel()
		err := a.swarm.dht.Provide(ctx, key, true)
		a.deliver(queryDone{id: id, err: err})
	}()
	return nil
}

func (a *actor) getProviders(c GetProviders) error {
	key, err := providerKey(c.Key)
	if err != nil {
		return &DhtError{Key: c.Key.String(), Reason: err.Error()}
	}
	id := a.trackQuery(pendingGetProviders, c.Key)
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, queryTimeout)
		defer cancel()
		var providers []peer.ID
		for info := range a.swarm.dht.FindProvidersAsync(ctx, key, 0) {
			if info.ID == "" {
				continue
			}
			providers = append(providers, info.ID)
		}
		a.deliver(queryDone{id: id, providers: providers})
	}()
	return nil
}

// handleQueryDone routes a terminal DHT result back to the event determined
// jointly by the pending command variant and the result kind. Results whose
// id no longer correlates are dropped.
func (a *actor) handleQueryDone(e queryDone) {
	pq, ok := a.state.completeQuery(e.id)
	outstandingQueriesGauge.Set(float64(len(a.state.pending)))
	if !ok {
		a.log.Debug("Uncorrelated query result dropped", "id", e.id)
		return
	}
	switch pq.kind {
	case pendingGetRecord:
		if e.err != nil {
			a.emit(RecordNotFound{Key: pq.key})
			return
		}
		value, err := common.NewDhtValue(e.value)
		if err != nil {
			value = common.EmptyDhtValue()
		}
		a.emit(RecordFound{Key: pq.key, Value: value})
	case pendingPutRecord:
		if e.err != nil {
			a.emit(RecordStoreFailed{Key: pq.key, Reason: e.err.Error()})
			return
		}
		a.emit(RecordStored{Key: pq.key})
	case pendingStartProviding:
		if e.err != nil {
			// No terminal event is defined for a failed provide.
			a.log.Debug("Provider advertisement failed", "key", pq.key, "err", e.err)
			return
		}
		a.emit(ProviderRecordStored{Key: pq.key})
	case pendingGetProviders:
		if len(e.providers) == 0 {
			a.log.Debug("Provider lookup found no providers", "key", pq.key)
			return
		}
		a.emit(ProvidersFound{Key: pq.key, Providers: e.providers})
	}
}
