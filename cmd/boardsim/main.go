package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/boardlink/pkg/framework"
	"github.com/robotalks/boardlink/pkg/l0/comm"
)

var (
	listenAddr = ":7001"
	wsAddr     string
	roleName   = "top"
	withRole   bool
	echoID     uint
	replyID    uint
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "TCP address to accept the host on.")
	flag.StringVar(&wsAddr, "ws", wsAddr, "Also accept the host by WebSocket on this address, path /board.")
	flag.StringVar(&roleName, "role", roleName, "Role of the simulated board.")
	flag.BoolVar(&withRole, "with-role", withRole, "Frames carry the role byte.")
	flag.UintVar(&echoID, "echo", 1, "Identifier of frames echoed back.")
	flag.UintVar(&replyID, "reply", 2, "Identifier of echoed frames.")
}

// wsConn keeps the websocket handler alive until the link closes it.
type wsConn struct {
	*websocket.Conn
	done chan struct{}
	once sync.Once
}

func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.Conn.Close()
}

func acceptTCP(ctx context.Context, conns chan<- io.ReadWriteCloser) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	glog.Infof("listen %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("host connected from %s", conn.RemoteAddr())
			select {
			case conns <- conn:
			case <-ctx.Done():
				conn.Close()
				return ctx.Err()
			}
		}
	})
}

func serveWebSocket(ctx context.Context, conns chan<- io.ReadWriteCloser) error {
	mux := http.NewServeMux()
	mux.Handle("/board", websocket.Handler(func(ws *websocket.Conn) {
		ws.PayloadType = websocket.BinaryFrame
		conn := &wsConn{Conn: ws, done: make(chan struct{})}
		glog.Infof("host connected by websocket from %s", ws.Request().RemoteAddr)
		select {
		case conns <- conn:
			<-conn.done
		case <-ctx.Done():
		}
	}))
	server := &http.Server{Addr: wsAddr, Handler: mux}
	return fx.RunWithContextCancel(ctx, func() { server.Close() }, server.ListenAndServe)
}

func main() {
	flag.Parse()
	role, err := comm.ParseRole(roleName)
	if err != nil {
		log.Fatalln(err)
	}
	if echoID > 0xff || replyID > 0xff {
		log.Fatalln("identifiers must be within 0..255")
	}

	conns := make(chan io.ReadWriteCloser)
	link := comm.NewLink(comm.LinkConfig{
		Role:      comm.RoleHost,
		LocalRole: role,
		Codec:     comm.Codec{WithRole: withRole},
	}, comm.NewStreamTransport(comm.OpenFrom(conns)))
	link.Register(comm.Identifier(echoID), comm.HandlerFunc(func(ctx context.Context, payload []byte) {
		data := append([]byte(nil), payload...)
		go func() {
			if err := link.Send(ctx, comm.Identifier(replyID), data); err != nil {
				glog.Warningf("echo: %v", err)
			}
		}()
	}))
	link.Begin()

	runner := fx.NewRunner().HandleSignals()
	runner.Go(
		fx.NamedRun("link", link),
		fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error { return acceptTCP(ctx, conns) })),
	)
	if wsAddr != "" {
		runner.Go(fx.NamedRun("ws", fx.RunFunc(func(ctx context.Context) error { return serveWebSocket(ctx, conns) })))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
