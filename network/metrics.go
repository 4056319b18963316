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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peernet",
		Subsystem: "network",
		Name:      "commands_total",
		Help:      "Commands observed by the network actor, by kind.",
	}, []string{"command"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peernet",
		Subsystem: "network",
		Name:      "events_total",
		Help:      "Events emitted to the embedder, by kind.",
	}, []string{"event"})

	connectedPeersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "peernet",
		Subsystem: "network",
		Name:      "connected_peers",
		Help:      "Peers with at least one established connection.",
	})

	outstandingQueriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "peernet",
		Subsystem: "network",
		Name:      "outstanding_queries",
		Help:      "DHT queries awaiting a terminal result.",
	})
)
