// Package env builds the link stack of a process from flags, environment
// variables and an optional board file.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/boardlink/pkg/l0/comm"
	"github.com/robotalks/boardlink/pkg/l0/port"
)

// Duration is a time.Duration parsed from text ("250ms") in board files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Board configures the link to one board.
type Board struct {
	Role        string `yaml:"role" toml:"role"`
	Port        string `yaml:"port" toml:"port"`
	AutoConnect bool   `yaml:"autoconnect" toml:"autoconnect"`
	// Forward lists identifiers of received frames published to MQTT.
	Forward []int `yaml:"forward" toml:"forward"`
}

// Config provides options to setup the links.
type Config struct {
	LocalRole  string `yaml:"local_role" toml:"local_role"`
	WithRole   bool   `yaml:"with_role" toml:"with_role"`
	MaxPayload int    `yaml:"max_payload" toml:"max_payload"`

	FrameTimeout    Duration `yaml:"frame_timeout" toml:"frame_timeout"`
	HandshakeRetry  Duration `yaml:"handshake_retry" toml:"handshake_retry"`
	IdentifyTimeout Duration `yaml:"identify_timeout" toml:"identify_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	ReconnectDelay  Duration `yaml:"reconnect_delay" toml:"reconnect_delay"`

	// MQTTURL specifies the MQTT broker of the bridge.
	// e.g. mqtt://host:port/topic-prefix
	MQTTURL string `yaml:"mqtt" toml:"mqtt"`
	// CorruptionLimit is the number of corrupted frames per minute on one
	// link escalated to a FATAL event, 0 disables.
	CorruptionLimit int `yaml:"corruption_limit" toml:"corruption_limit"`

	Boards []Board `yaml:"boards" toml:"boards"`

	// ConfigFile is loaded by Load if not empty.
	ConfigFile string `yaml:"-" toml:"-"`
}

// Link is a resolved Board.
type Link struct {
	Role        comm.Role
	Port        string
	AutoConnect bool
	Forward     []comm.Identifier
}

var defaultConfig = Config{
	LocalRole:       comm.RoleHost.String(),
	MaxPayload:      comm.DefaultMaxPayload,
	FrameTimeout:    Duration(comm.DefaultFrameTimeout),
	HandshakeRetry:  Duration(comm.DefaultHandshakeRetry),
	IdentifyTimeout: Duration(comm.DefaultIdentifyTimeout),
	WriteTimeout:    Duration(comm.DefaultWriteTimeout),
	ReconnectDelay:  Duration(comm.DefaultReconnectDelay),
	MQTTURL:         "mqtt://localhost:1883/boardlink/",
	CorruptionLimit: 100,
}

func init() {
	if val := os.Getenv("BOARDLINK_CONFIG"); val != "" {
		defaultConfig.ConfigFile = val
	}
	if val := os.Getenv("BOARDLINK_ROLE"); val != "" {
		defaultConfig.LocalRole = val
	}
	if val := os.Getenv("BOARDLINK_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("BOARDLINK_WITH_ROLE"); val != "" {
		defaultConfig.WithRole, _ = strconv.ParseBool(val)
	}
	if val := os.Getenv("BOARDLINK_BOARDS"); val != "" {
		boards := (*boardsFlag)(&defaultConfig.Boards)
		for _, item := range strings.Split(val, ",") {
			if err := boards.Set(item); err != nil {
				log.Fatalf("BOARDLINK_BOARDS: %v", err)
			}
		}
	}
}

// boardsFlag parses ROLE=PORT[,autoconnect] repeatedly.
type boardsFlag []Board

func (f *boardsFlag) String() string {
	if f == nil {
		return ""
	}
	items := make([]string, 0, len(*f))
	for _, b := range *f {
		items = append(items, b.Role+"="+b.Port)
	}
	return strings.Join(items, ",")
}

func (f *boardsFlag) Set(val string) error {
	parts := strings.SplitN(strings.TrimSpace(val), "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid board %q, expect ROLE=PORT", val)
	}
	b := Board{Role: parts[0], Port: parts[1]}
	if strings.HasSuffix(b.Port, "+") {
		b.Port, b.AutoConnect = strings.TrimSuffix(b.Port, "+"), true
	}
	*f = append(*f, b)
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "Board file (.yaml, .yml or .toml).")
	flag.StringVar(&defaultConfig.LocalRole, "role", defaultConfig.LocalRole, "Role of this side.")
	flag.BoolVar(&defaultConfig.WithRole, "with-role", defaultConfig.WithRole, "Frames carry the recipient role byte.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL.")
	flag.Var((*boardsFlag)(&defaultConfig.Boards), "board", "Board as ROLE=PORT, suffix + to connect on start. Repeatable.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Boards = append([]Board(nil), defaultConfig.Boards...)
	return &conf
}

// Codec gets the frame codec.
func (c *Config) Codec() comm.Codec {
	return comm.Codec{WithRole: c.WithRole, MaxPayload: c.MaxPayload}
}

// Role resolves LocalRole.
func (c *Config) Role() (comm.Role, error) {
	return comm.ParseRole(c.LocalRole)
}

// Links resolves and validates boards.
func (c *Config) Links() ([]Link, error) {
	local, err := c.Role()
	if err != nil {
		return nil, fmt.Errorf("local role: %w", err)
	}
	links := make([]Link, 0, len(c.Boards))
	seen := make(map[comm.Role]bool)
	for n, b := range c.Boards {
		role, err := comm.ParseRole(b.Role)
		if err != nil {
			return nil, fmt.Errorf("boards[%d]: %w", n, err)
		}
		if role == local {
			return nil, fmt.Errorf("boards[%d]: role %s is the local role", n, role)
		}
		if seen[role] {
			return nil, fmt.Errorf("boards[%d]: duplicated role %s", n, role)
		}
		seen[role] = true
		if _, err := port.Parse(b.Port); err != nil {
			return nil, fmt.Errorf("boards[%d]: %w", n, err)
		}
		l := Link{Role: role, Port: b.Port, AutoConnect: b.AutoConnect}
		for _, id := range b.Forward {
			if id < 0 || id > 255 {
				return nil, fmt.Errorf("boards[%d]: invalid identifier %d", n, id)
			}
			l.Forward = append(l.Forward, comm.Identifier(id))
		}
		links = append(links, l)
	}
	return links, nil
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.MaxPayload < 0 || c.MaxPayload > 0xffff-2 {
		return fmt.Errorf("invalid max_payload %d", c.MaxPayload)
	}
	if c.CorruptionLimit < 0 {
		return fmt.Errorf("invalid corruption_limit %d", c.CorruptionLimit)
	}
	_, err := c.Links()
	return err
}

// LinkConfig creates the comm.LinkConfig of a link.
func (c *Config) LinkConfig(l Link) comm.LinkConfig {
	return comm.LinkConfig{
		Role:            l.Role,
		Codec:           c.Codec(),
		FrameTimeout:    time.Duration(c.FrameTimeout),
		HandshakeRetry:  time.Duration(c.HandshakeRetry),
		IdentifyTimeout: time.Duration(c.IdentifyTimeout),
		WriteTimeout:    time.Duration(c.WriteTimeout),
	}
}

// NewManager creates the comm.Manager with one link per board.
// Events may be nil and set on the Manager later.
func (c *Config) NewManager(events comm.EventSink) (*comm.Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	local, _ := c.Role()
	links, _ := c.Links()
	m := comm.NewManager(local, events)
	for _, l := range links {
		tr, err := port.NewTransport(l.Port)
		if err != nil {
			return nil, err
		}
		if c.ReconnectDelay > 0 {
			tr.ReconnectDelay = time.Duration(c.ReconnectDelay)
		}
		if _, err := m.NewLink(c.LinkConfig(l), tr); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNewManager creates the comm.Manager and fails on error.
func (c *Config) MustNewManager(events comm.EventSink) *comm.Manager {
	m, err := c.NewManager(events)
	if err != nil {
		log.Fatalln(err)
	}
	return m
}
