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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/peernet/go-peernet/common"
	"github.com/peernet/go-peernet/network"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type networkFileConfig struct {
	Port                 uint16
	MdnsQueryIntervalMs  int
	GossipsubHeartbeatMs int
	InitialTopics        []string
	KademliaReplication  int
}

type metricsFileConfig struct {
	Addr string `toml:",omitempty"`
}

type peernetConfig struct {
	Network networkFileConfig
	Metrics metricsFileConfig
}

func loadConfig(file string, cfg *peernetConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig resolves the node configuration: defaults, then the config
// file, then command line flags.
func makeConfig(ctx *cli.Context) (network.Config, string, error) {
	cfg := network.DefaultConfig()
	metricsAddr := ""

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		var fileCfg peernetConfig
		if err := loadConfig(file, &fileCfg); err != nil {
			return cfg, "", err
		}
		cfg.Port = fileCfg.Network.Port
		if fileCfg.Network.MdnsQueryIntervalMs > 0 {
			cfg.MdnsQueryInterval = time.Duration(fileCfg.Network.MdnsQueryIntervalMs) * time.Millisecond
		}
		if fileCfg.Network.GossipsubHeartbeatMs > 0 {
			cfg.GossipsubHeartbeat = time.Duration(fileCfg.Network.GossipsubHeartbeatMs) * time.Millisecond
		}
		if fileCfg.Network.KademliaReplication > 0 {
			cfg.KademliaReplication = fileCfg.Network.KademliaReplication
		}
		if len(fileCfg.Network.InitialTopics) > 0 {
			topics := make([]common.TopicName, 0, len(fileCfg.Network.InitialTopics))
			for _, s := range fileCfg.Network.InitialTopics {
				topic, err := common.NewTopicName(s)
				if err != nil {
					return cfg, "", err
				}
				topics = append(topics, topic)
			}
			cfg.InitialTopics = topics
		}
		metricsAddr = fileCfg.Metrics.Addr
	}

	// portFlag.Name lists both aliases ("port, p"); look the flag up by its
	// primary name.
	if ctx.GlobalIsSet("port") {
		port := ctx.GlobalInt("port")
		if port < 0 || port > 65535 {
			return cfg, "", fmt.Errorf("invalid port %d", port)
		}
		cfg.Port = uint16(port)
	}
	if ctx.GlobalIsSet(metricsAddrFlag.Name) {
		metricsAddr = ctx.GlobalString(metricsAddrFlag.Name)
	}
	return cfg, metricsAddr, nil
}
