package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/boardlink/pkg/env"
	"github.com/robotalks/boardlink/pkg/l0/comm"
)

// Shell provides ishell backed interactive shell over a comm.Manager.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Manager *comm.Manager

	ctx    context.Context
	cancel func()
}

const (
	shellKey       = "$shell"
	prompt         = "boardlink > "
	defaultTimeout = 3 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ProbeCmd,
		&ScanCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&SendCmd,
		&WatchCmd,
		&StatsCmd,
		&StateCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config, m *comm.Manager) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     defaultTimeout,

		Shell:   ishell.New(),
		Config:  conf,
		Manager: m,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithArgs wraps command func requires at least n arguments.
func WithArgs(n int, fn func(s *Shell, c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) < n {
			c.Err(fmt.Errorf("usage: %s %s", c.Cmd.Name, c.Cmd.Help))
			return
		}
		fn(ShellFrom(c), c)
	}
}

// Print prints v in JSON or with the format.
func (s *Shell) Print(c *ishell.Context, v interface{}, format string, args ...interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Printf(format, args...)
}

func (s *Shell) timeoutCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, s.Timeout)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.cancel()
	go func() {
		if err := s.Manager.Run(s.ctx); err != nil && err != context.Canceled {
			log.Fatalln(err)
		}
	}()
	defer s.Manager.Close()
	if links, err := s.Config.Links(); err == nil {
		for _, l := range links {
			if link, err := s.Manager.Link(l.Role); l.AutoConnect && err == nil {
				link.Begin()
			}
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := env.NewConfig().MustResolve()
	New(conf, conf.MustNewManager(nil)).Run(flag.Args()...)
}
