// ABOUTME: Command-line remote control for beatbox devices
// ABOUTME: Sends one command over UDP or WebSocket, or lists devices found via mDNS
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/discovery"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/remote"
)

var (
	udpAddr  = flag.String("udp", "", "Device UDP command address (host:port)")
	wsAddr   = flag.String("ws", "", "Device WebSocket address (host:port)")
	discover = flag.Bool("discover", false, "Find devices via mDNS; with a command, send it to the first device")
	watch    = flag.Bool("watch", false, "With -ws, keep printing status updates")
	timeout  = flag.Duration("timeout", 3*time.Second, "Reply and discovery timeout")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands: mode N | volume N | tempo N | play N | stop\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	log.SetFlags(0)

	line := strings.Join(flag.Args(), " ")

	var cmd control.Command
	if line != "" {
		var err error
		cmd, err = control.ParseCommand(line)
		if err != nil {
			log.Fatalf("invalid command: %v", err)
		}
	}

	if *discover {
		devices, err := discovery.Browse(context.Background(), *timeout)
		if err != nil {
			log.Fatalf("discovery failed: %v", err)
		}
		if len(devices) == 0 {
			log.Fatalf("no devices found")
		}
		for _, d := range devices {
			fmt.Printf("%s\t%s%s\tudp:%d\tid:%s\n", d.Name, d.Addr(), d.Path, d.UDPPort, d.DeviceID)
		}
		if line == "" {
			return
		}

		first := devices[0]
		if first.UDPPort > 0 {
			*udpAddr = net.JoinHostPort(first.Host, strconv.Itoa(first.UDPPort))
		} else {
			*wsAddr = first.Addr()
		}
	}

	if line == "" && (!*watch || *wsAddr == "") {
		usage()
		os.Exit(2)
	}

	var err error
	switch {
	case *wsAddr != "":
		err = sendWebSocket(*wsAddr, line)
	case *udpAddr != "":
		err = sendUDP(*udpAddr, cmd)
	default:
		log.Fatalf("no device address: use -udp, -ws or -discover")
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// sendUDP sends one datagram and prints the device's reply
func sendUDP(addr string, cmd control.Command) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd.String())); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(*timeout))
	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("no reply from %s: %w", addr, err)
	}

	reply := string(buf[:n])
	fmt.Println(reply)
	if strings.HasPrefix(reply, "error:") {
		os.Exit(1)
	}
	return nil
}

// sendWebSocket sends a command line (if any) and prints the responses
func sendWebSocket(addr, line string) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: remote.Path}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	if line != "" {
		req := remote.Message{Type: remote.TypeCommand, Payload: remote.CommandRequest{Line: line}}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
	}

	for {
		if !*watch {
			conn.SetReadDeadline(time.Now().Add(*timeout))
		}

		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		switch msg.Type {
		case remote.TypeHello:
			var hello remote.DeviceHello
			if err := json.Unmarshal(msg.Payload, &hello); err == nil {
				fmt.Printf("connected to %s (%s, v%s) patterns=%v\n", hello.Name, hello.DeviceID, hello.Version, hello.Patterns)
			}

		case remote.TypeStatus:
			var st remote.DeviceStatus
			if err := json.Unmarshal(msg.Payload, &st); err != nil {
				return fmt.Errorf("bad status: %w", err)
			}
			if st.LastCommand != "" {
				fmt.Println(st.LastCommand)
			}
			if *watch {
				fmt.Printf("tempo=%.0f volume=%.0f%% pattern=%s beat=%.2f voices=%d\n",
					st.Tempo, st.Volume, st.Pattern, st.Beat, st.Voices)
			} else if st.LastCommand != "" {
				return nil
			}

		case remote.TypeError:
			var e remote.ErrorPayload
			json.Unmarshal(msg.Payload, &e)
			return fmt.Errorf("error: %s: %s", e.Error, e.Message)
		}
	}
}
