// Copyright 2025 The go-peernet Authors
// This file is part of go-peernet.
//
// go-peernet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-peernet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-peernet. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "peernet.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[Network]
Port = 4001
MdnsQueryIntervalMs = 2000
GossipsubHeartbeatMs = 500
InitialTopics = ["peernet-global", "chat"]
KademliaReplication = 5

[Metrics]
Addr = "127.0.0.1:9090"
`), 0644))

	var cfg peernetConfig
	require.NoError(t, loadConfig(file, &cfg))
	assert.Equal(t, uint16(4001), cfg.Network.Port)
	assert.Equal(t, 2000, cfg.Network.MdnsQueryIntervalMs)
	assert.Equal(t, 500, cfg.Network.GossipsubHeartbeatMs)
	assert.Equal(t, []string{"peernet-global", "chat"}, cfg.Network.InitialTopics)
	assert.Equal(t, 5, cfg.Network.KademliaReplication)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg peernetConfig
	require.Error(t, loadConfig(filepath.Join(t.TempDir(), "absent.toml"), &cfg))
}

func TestLoadConfigUnknownField(t *testing.T) {
	file := filepath.Join(t.TempDir(), "peernet.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[Network]
Prot = 4001
`), 0644))

	var cfg peernetConfig
	require.Error(t, loadConfig(file, &cfg))
}

func TestSplitCommand(t *testing.T) {
	cmd, rest := splitCommand("put key some value")
	assert.Equal(t, "put", cmd)
	assert.Equal(t, "key some value", rest)

	cmd, rest = splitCommand("  quit  ")
	assert.Equal(t, "quit", cmd)
	assert.Equal(t, "", rest)
}
