package sh

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/boardlink/pkg/env"
	"github.com/robotalks/boardlink/pkg/l0/comm"
	"github.com/robotalks/boardlink/pkg/l0/port"
)

// ParseIdentifier parses a decimal or 0x prefixed identifier.
func ParseIdentifier(s string) (comm.Identifier, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier %q", s)
	}
	return comm.Identifier(n), nil
}

// ParsePayload parses hex bytes. Tokens are concatenated, so both
// "0a 14" and "0a14" give the same payload.
func ParsePayload(tokens []string) ([]byte, error) {
	var str strings.Builder
	for _, token := range tokens {
		str.WriteString(strings.TrimPrefix(strings.ToLower(token), "0x"))
	}
	payload, err := hex.DecodeString(str.String())
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %v", err)
	}
	return payload, nil
}

// ParseFrame parses ROLE ID [HEX...].
func ParseFrame(args []string) (comm.Role, comm.Identifier, []byte, error) {
	if len(args) < 2 {
		return 0, 0, nil, fmt.Errorf("ROLE and ID required")
	}
	role, err := comm.ParseRole(args[0])
	if err != nil {
		return 0, 0, nil, err
	}
	id, err := ParseIdentifier(args[1])
	if err != nil {
		return 0, 0, nil, err
	}
	payload, err := ParsePayload(args[2:])
	if err != nil {
		return 0, 0, nil, err
	}
	return role, id, payload, nil
}

// Probe opens the port and asks the board on it for its role.
// The ctx bounds the whole probe.
func Probe(ctx context.Context, conf comm.LinkConfig, rawURL string) (comm.Role, error) {
	tr, err := port.NewTransport(rawURL)
	if err != nil {
		return 0, err
	}
	l := comm.NewLink(conf, tr)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		l.Run(runCtx)
		close(done)
	}()
	defer func() {
		cancel()
		l.Close()
		<-done
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !tr.Connected() {
		select {
		case <-ctx.Done():
			return 0, &comm.Error{Code: comm.ErrDeviceNotFound, Role: conf.Role, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
	return l.Identify(ctx)
}

type linkState struct {
	Role    string `json:"role"`
	State   string `json:"state"`
	Carrier bool   `json:"carrier"`
	Port    string `json:"port,omitempty"`
}

func parseRoleArg(c *ishell.Context) (comm.Role, bool) {
	role, err := comm.ParseRole(c.Args[0])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return role, true
}

var (
	// PortsCmd lists serial devices.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "",
		Func: WithArgs(0, func(s *Shell, c *ishell.Context) {
			ports, err := port.Enumerate()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			s.Print(c, ports, "%s\n", strings.Join(ports, "\n"))
		}),
	}

	// ProbeCmd identifies the board on a port.
	ProbeCmd = ishell.Cmd{
		Name: "probe",
		Help: "PORT",
		Func: WithArgs(1, func(s *Shell, c *ishell.Context) {
			conf := s.Config.LinkConfig(env.Link{})
			conf.LocalRole = s.Manager.LocalRole
			ctx, cancel := s.timeoutCtx()
			defer cancel()
			role, err := Probe(ctx, conf, c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]string{"port": c.Args[0], "role": role.String()}, "%s: %s\n", c.Args[0], role)
		}),
	}

	// ScanCmd identifies boards on all configured links.
	ScanCmd = ishell.Cmd{
		Name:    "scan",
		Aliases: []string{"l"},
		Help:    "",
		Func: WithArgs(0, func(s *Shell, c *ishell.Context) {
			ctx, cancel := s.timeoutCtx()
			defer cancel()
			roles, err := s.Manager.ScanDevices(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			names := make([]string, 0, len(roles))
			for _, role := range roles {
				names = append(names, role.String())
			}
			if len(names) == 0 {
				s.Print(c, names, "No boards found\n")
				return
			}
			s.Print(c, names, "%s\n", strings.Join(names, " "))
		}),
	}

	// ConnectCmd connects a board.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "ROLE",
		Func: WithArgs(1, func(s *Shell, c *ishell.Context) {
			role, ok := parseRoleArg(c)
			if !ok {
				return
			}
			ctx, cancel := s.timeoutCtx()
			defer cancel()
			if err := s.Manager.Connect(ctx, role); err != nil {
				c.Err(err)
				return
			}
			s.Print(c, "OK", "OK\n")
		}),
	}

	// DisconnectCmd disconnects a board.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "ROLE",
		Func: WithArgs(1, func(s *Shell, c *ishell.Context) {
			role, ok := parseRoleArg(c)
			if !ok {
				return
			}
			if err := s.Manager.Disconnect(role); err != nil {
				c.Err(err)
			}
		}),
	}

	// SendCmd sends a frame.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "ROLE ID [HEX...]",
		Func: WithArgs(2, func(s *Shell, c *ishell.Context) {
			role, id, payload, err := ParseFrame(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ctx, cancel := s.timeoutCtx()
			defer cancel()
			if err := s.Manager.Send(ctx, role, id, payload); err != nil {
				c.Err(err)
			}
		}),
	}

	// WatchCmd prints frames received with an identifier.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "ROLE ID",
		Func: WithArgs(2, func(s *Shell, c *ishell.Context) {
			role, id, _, err := ParseFrame(c.Args[:2])
			if err != nil {
				c.Err(err)
				return
			}
			err = s.Manager.Register(role, id, comm.HandlerFunc(func(_ context.Context, payload []byte) {
				s.Shell.Printf("%s/%d: % x\n", role, id, payload)
			}))
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// StatsCmd prints link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: WithArgs(0, func(s *Shell, c *ishell.Context) {
			stats := s.Manager.Stats()
			if s.OutputJSON {
				byName := make(map[string]comm.StatsSnapshot, len(stats))
				for role, st := range stats {
					byName[role.String()] = st
				}
				s.Print(c, byName, "")
				return
			}
			roles := make([]comm.Role, 0, len(stats))
			for role := range stats {
				roles = append(roles, role)
			}
			sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
			for _, role := range roles {
				st := stats[role]
				c.Printf("%-8s tx=%d rx=%d corrupted=%d discarded=%d dropped=%d unhandled=%d write_failures=%d connects=%d disconnects=%d\n",
					role, st.FramesTx, st.FramesRx, st.Corrupted, st.Discarded, st.Dropped,
					st.Unhandled, st.WriteFailures, st.Connects, st.Disconnects)
			}
		}),
	}

	// StateCmd prints link states.
	StateCmd = ishell.Cmd{
		Name: "state",
		Help: "",
		Func: WithArgs(0, func(s *Shell, c *ishell.Context) {
			ports := make(map[comm.Role]string)
			if links, err := s.Config.Links(); err == nil {
				for _, l := range links {
					ports[l.Role] = l.Port
				}
			}
			states := []linkState{}
			for _, role := range s.Manager.Roles() {
				l, err := s.Manager.Link(role)
				if err != nil {
					continue
				}
				states = append(states, linkState{
					Role:    role.String(),
					State:   l.State().String(),
					Carrier: l.Transport().Connected(),
					Port:    ports[role],
				})
			}
			if s.OutputJSON {
				s.Print(c, states, "")
				return
			}
			for _, st := range states {
				c.Printf("%-8s %-12s carrier=%v %s\n", st.Role, st.State, st.Carrier, st.Port)
			}
		}),
	}
)
