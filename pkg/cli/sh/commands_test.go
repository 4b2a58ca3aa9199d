package sh

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/boardlink/pkg/l0/comm"
)

func TestParseFrame(t *testing.T) {
	cases := []struct {
		args    []string
		role    comm.Role
		id      comm.Identifier
		payload []byte
	}{
		{[]string{"bottom", "7", "0a", "14"}, comm.RoleBottom, 7, []byte{0x0a, 0x14}},
		{[]string{"BOTTOM", "0x07", "0A14"}, comm.RoleBottom, 7, []byte{0x0a, 0x14}},
		{[]string{"top", "255", "0x01", "0xff"}, comm.RoleTop, 255, []byte{1, 0xff}},
		{[]string{"5", "1"}, comm.Role(5), 1, []byte{}},
	}
	for _, c := range cases {
		role, id, payload, err := ParseFrame(c.args)
		require.NoError(t, err, "%v", c.args)
		require.Equal(t, c.role, role)
		require.Equal(t, c.id, id)
		require.Equal(t, c.payload, payload)
	}

	for _, args := range [][]string{
		{"top"},
		{"nobody", "1"},
		{"top", "256"},
		{"top", "x"},
		{"top", "1", "0"},
		{"top", "1", "zz"},
	} {
		_, _, _, err := ParseFrame(args)
		require.Error(t, err, "%v", args)
	}
}

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	conns := make(chan io.ReadWriteCloser, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns <- conn
		}
	}()
	board := comm.NewLink(comm.LinkConfig{
		Role:         comm.RoleHost,
		LocalRole:    comm.RoleMiddle,
		PollInterval: time.Millisecond,
	}, comm.NewStreamTransport(comm.OpenFrom(conns)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go board.Run(ctx)

	probeCtx, probeCancel := context.WithTimeout(ctx, 2*time.Second)
	defer probeCancel()
	role, err := Probe(probeCtx, comm.LinkConfig{PollInterval: time.Millisecond}, "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	require.Equal(t, comm.RoleMiddle, role)
}

func TestProbeNoBoard(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Probe(ctx, comm.LinkConfig{}, "tcp://"+addr)
	require.ErrorIs(t, err, comm.ErrDeviceNotFound)

	_, err = Probe(ctx, comm.LinkConfig{}, "ftp://"+addr)
	require.Error(t, err)
}
