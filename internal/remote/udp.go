// ABOUTME: UDP text command endpoint
// ABOUTME: One command per datagram, answered with the applied command or an error
package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
)

const maxDatagram = 1500

// UDPServer receives text commands over UDP
type UDPServer struct {
	commander *Commander
	conn      net.PacketConn
	debug     bool

	closeOnce sync.Once
}

// ListenUDP binds a UDP command endpoint on addr (e.g. ":12345")
func ListenUDP(addr string, commander *Commander, debug bool) (*UDPServer, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on udp %s: %w", addr, err)
	}

	log.Printf("UDP command endpoint listening on %s", conn.LocalAddr())

	return &UDPServer{
		commander: commander,
		conn:      conn,
		debug:     debug,
	}, nil
}

// Addr returns the bound local address
func (s *UDPServer) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve handles datagrams until ctx is cancelled or the server is closed
func (s *UDPServer) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("udp read failed: %w", err)
		}

		line := strings.TrimSpace(string(buf[:n]))
		cmd, err := s.commander.ExecuteLine(line)
		reply := Reply(cmd, err)

		if err != nil {
			log.Printf("Rejected UDP command %q from %s: %v", line, addr, err)
		} else if s.debug {
			log.Printf("UDP command from %s: %s", addr, reply)
		}

		if _, err := s.conn.WriteTo([]byte(reply), addr); err != nil {
			log.Printf("Failed to reply to %s: %v", addr, err)
		}
	}
}

// Close stops the endpoint
func (s *UDPServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}
