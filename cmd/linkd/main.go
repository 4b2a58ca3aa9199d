package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/boardlink/pkg/env"
	fx "github.com/robotalks/boardlink/pkg/framework"
	"github.com/robotalks/boardlink/pkg/l0/comm"
	"github.com/robotalks/boardlink/pkg/l1/bridge"
	"github.com/robotalks/boardlink/pkg/l1/health"
)

var statusInterval = bridge.DefaultStatusInterval

func init() {
	env.SetupFlags()
	flag.DurationVar(&statusInterval, "status-interval", statusInterval, "Interval to republish link status.")
}

func newQueue(conf *env.Config, hostID string) *bridge.Queue {
	opts, prefix, err := bridge.ClientOptionsFromURL(conf.MQTTURL)
	if err != nil {
		log.Fatalln(err)
	}
	if opts.ClientID == "" {
		opts.SetClientID("linkd-" + hostID)
	}
	q := bridge.NewQueue(opts, prefix)
	if err := q.Connect(); err != nil {
		log.Fatalf("connect %s: %v", conf.MQTTURL, err)
	}
	return q
}

func main() {
	flag.Parse()

	conf := env.NewConfig().MustResolve()
	links, _ := conf.Links()
	m := conf.MustNewManager(nil)
	defer m.Close()

	hostID := env.HostID()
	runner := fx.NewRunner().HandleSignals()

	var events comm.EventSink = comm.GlogSink{}
	if conf.MQTTURL != "" {
		q := newQueue(conf, hostID)
		defer q.Close()
		b := bridge.New(m, q, hostID)
		b.StatusInterval = statusInterval
		m.Events, m.Notifier = b, b
		events = b
		for _, l := range links {
			if err := b.Forward(l.Role, l.Forward...); err != nil {
				log.Fatalln(err)
			}
		}
		runner.Go(fx.NamedRun("bridge", b))
	}
	runner.Go(
		fx.NamedRun("manager", m),
		fx.NamedRun("watchdog", health.New(m, conf.CorruptionLimit, events)),
	)

	for _, l := range links {
		if !l.AutoConnect {
			continue
		}
		if link, err := m.Link(l.Role); err == nil {
			glog.Infof("autoconnect %s on %s", l.Role, l.Port)
			link.Begin()
		}
	}

	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
