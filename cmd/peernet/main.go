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

// peernet is an interactive local-network peer-to-peer node: gossip chat,
// DHT storage and mDNS discovery over one libp2p swarm.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/peernet/go-peernet/common"
	"github.com/peernet/go-peernet/network"
)

const clientIdentifier = "peernet"

var (
	portFlag = cli.IntFlag{
		Name:  "port, p",
		Usage: "TCP listen port (0 = ephemeral)",
		Value: 0,
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Serve prometheus metrics on this address (empty = disabled)",
	}
)

func main() {
	// -v is repeatable and raises verbosity by one per occurrence; strip it
	// before flag parsing.
	args := make([]string, 0, len(os.Args))
	extraVerbosity := 0
	for _, arg := range os.Args {
		if arg == "-v" {
			extraVerbosity++
			continue
		}
		args = append(args, arg)
	}

	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "local-network p2p node with gossip chat and DHT storage"
	app.Flags = []cli.Flag{portFlag, verbosityFlag, configFileFlag, metricsAddrFlag}
	app.Action = func(ctx *cli.Context) error {
		setupLogger(ctx.GlobalInt(verbosityFlag.Name) + extraVerbosity)
		return runNode(ctx)
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(verbosity int) {
	usecolor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	output := colorable.NewColorableStderr()
	if verbosity > int(log.LvlTrace) {
		verbosity = int(log.LvlTrace)
	}
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(verbosity), log.StreamHandler(output, log.TerminalFormat(usecolor))))
}

// peerView is the shell's read model of the connected peer set, maintained
// from the event stream.
type peerView struct {
	mu    sync.Mutex
	peers map[peer.ID]time.Time
}

func newPeerView() *peerView {
	return &peerView{peers: make(map[peer.ID]time.Time)}
}

func (v *peerView) add(p peer.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.peers[p] = time.Now()
}

func (v *peerView) remove(p peer.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.peers, p)
}

func (v *peerView) snapshot() map[peer.ID]time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[peer.ID]time.Time, len(v.peers))
	for p, t := range v.peers {
		out[p] = t
	}
	return out
}

func runNode(cliCtx *cli.Context) error {
	cfg, metricsAddr, err := makeConfig(cliCtx)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Warn("Metrics server failed", "addr", metricsAddr, "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle := network.Spawn(ctx, cfg)
	started, err := handle.AwaitStarted()
	if err != nil {
		return err
	}
	fmt.Printf("local peer id: %s\n", started.LocalPeerID)
	fmt.Printf("listening on:  %s/p2p/%s\n", started.ListeningOn, started.LocalPeerID)

	view := newPeerView()

	var group errgroup.Group
	group.Go(func() error {
		printEvents(handle, view)
		return nil
	})

	shellErr := runShell(handle, view)

	// The event goroutine drains until the actor closes the stream after
	// ShutdownComplete.
	if err := group.Wait(); err != nil {
		return err
	}
	return shellErr
}

// printEvents renders the event stream and maintains the peer view. It
// returns when the actor closes the stream.
func printEvents(handle *network.Handle, view *peerView) {
	for {
		ev, ok := handle.Recv()
		if !ok {
			return
		}
		switch e := ev.(type) {
		case network.Listening:
			log.Info("Listening", "addr", e.Address)
		case network.PeerDiscovered:
			log.Info("Peer discovered", "peer", e.PeerID)
		case network.PeerConnected:
			view.add(e.PeerID)
			log.Info("Peer connected", "peer", e.PeerID)
		case network.PeerDisconnected:
			view.remove(e.PeerID)
			log.Info("Peer disconnected", "peer", e.PeerID)
		case network.PeerSubscribed:
			log.Debug("Peer subscribed", "peer", e.PeerID, "topic", e.Topic)
		case network.PeerUnsubscribed:
			log.Debug("Peer unsubscribed", "peer", e.PeerID, "topic", e.Topic)
		case network.GossipMessage:
			if text, ok := e.Payload.Text(); ok {
				fmt.Printf("[%s] %s: %s\n", e.Topic, shortPeer(e.Source), text)
			} else {
				fmt.Printf("[%s] %s: <%d raw bytes>\n", e.Topic, shortPeer(e.Source), e.Payload.Len())
			}
		case network.RecordStored:
			fmt.Printf("stored %q\n", e.Key)
		case network.RecordStoreFailed:
			fmt.Printf("store of %q failed: %s\n", e.Key, e.Reason)
		case network.RecordFound:
			if text, ok := recordText(e.Value); ok {
				fmt.Printf("%q = %s\n", e.Key, text)
			} else {
				fmt.Printf("%q = <%d raw bytes>\n", e.Key, e.Value.Len())
			}
		case network.RecordNotFound:
			fmt.Printf("%q not found\n", e.Key)
		case network.ProviderRecordStored:
			fmt.Printf("providing %q\n", e.Key)
		case network.ProvidersFound:
			fmt.Printf("%q provided by %d peer(s)\n", e.Key, len(e.Providers))
			for _, p := range e.Providers {
				fmt.Printf("  %s\n", p)
			}
		case network.RoutingUpdated:
			log.Debug("Routing updated", "peer", e.PeerID)
		case network.CommandFailed:
			fmt.Printf("error: %s\n", e.Reason)
		case network.ShutdownComplete:
			log.Info("Shutdown complete")
		}
	}
}

func runShell(handle *network.Handle, view *peerView) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println(`type "help" for commands`)
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			// Ctrl-C / EOF shut the node down cleanly.
			return shutdown(handle)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		cmd, rest := splitCommand(input)
		switch cmd {
		case "quit", "exit":
			return shutdown(handle)
		case "help":
			printHelp()
		case "peers":
			printPeers(view)
		case "send":
			if rest == "" {
				fmt.Println("usage: send <message>")
				continue
			}
			payload, err := common.GossipPayloadFromText(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Publish(payload))
		case "put":
			k, v := splitCommand(rest)
			if k == "" || v == "" {
				fmt.Println("usage: put <key> <value>")
				continue
			}
			key, err := common.NewDhtKey(k)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			value, err := common.NewDhtValue([]byte(v))
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Put(key, value))
		case "get":
			key, err := common.NewDhtKey(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Get(key))
		case "provide":
			key, err := common.NewDhtKey(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Send(network.StartProviding{Key: key}))
		case "providers":
			key, err := common.NewDhtKey(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Send(network.GetProviders{Key: key}))
		case "dial":
			addr, err := ma.NewMultiaddr(rest)
			if err != nil {
				fmt.Printf("error: bad multiaddr: %s\n", err)
				continue
			}
			sendOrReport(handle.Send(network.Dial{Addr: addr}))
		case "sub":
			topic, err := common.NewTopicName(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Send(network.Subscribe{Topic: topic}))
		case "unsub":
			topic, err := common.NewTopicName(rest)
			if err != nil {
				fmt.Printf("error: %s\n", err)
				continue
			}
			sendOrReport(handle.Send(network.Unsubscribe{Topic: topic}))
		default:
			fmt.Printf("unknown command %q, try \"help\"\n", cmd)
		}
	}
}

func shutdown(handle *network.Handle) error {
	if err := handle.Shutdown(); err != nil {
		// The actor is already gone; that is a clean enough exit.
		log.Debug("Shutdown send failed", "err", err)
	}
	return nil
}

func sendOrReport(err error) {
	if err != nil {
		fmt.Printf("error: %s\n", err)
	}
}

func splitCommand(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func shortPeer(p peer.ID) string {
	s := p.String()
	if len(s) > 12 {
		return s[len(s)-12:]
	}
	return s
}

func recordText(v common.DhtValue) (string, bool) {
	for _, b := range v.Bytes() {
		if b < 0x20 && b != '\n' && b != '\t' {
			return "", false
		}
	}
	return string(v.Bytes()), true
}

func printPeers(view *peerView) {
	snapshot := view.snapshot()
	if len(snapshot) == 0 {
		fmt.Println("no connected peers")
		return
	}
	type row struct {
		id    peer.ID
		since time.Time
	}
	rows := make([]row, 0, len(snapshot))
	for p, t := range snapshot {
		rows = append(rows, row{id: p, since: t})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].since.Before(rows[j].since) })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Peer", "Connected"})
	for _, r := range rows {
		table.Append([]string{r.id.String(), time.Since(r.since).Round(time.Second).String() + " ago"})
	}
	table.Render()
}

func printHelp() {
	fmt.Println(`commands:
  send <message>      broadcast on the default topic
  put <key> <value>   store a DHT record
  get <key>           look up a DHT record
  provide <key>       advertise this node as a provider
  providers <key>     list providers for a key
  dial <multiaddr>    connect to a peer (address must end in /p2p/<id>)
  sub <topic>         subscribe to a topic
  unsub <topic>       unsubscribe from a topic
  peers               list connected peers
  help                this text
  quit                shut down and exit`)
}
