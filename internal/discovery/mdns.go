// ABOUTME: mDNS advertisement and lookup of beatbox devices
// ABOUTME: Devices advertise their control endpoints; the remote CLI browses for them
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type of beatbox control endpoints
const ServiceType = "_beatbox._tcp"

// Config holds advertisement configuration
type Config struct {
	Name     string
	DeviceID string
	Port     int    // WebSocket control port
	Path     string // WebSocket path
	UDPPort  int    // 0 if the UDP endpoint is disabled
}

// Advertiser publishes this device over mDNS until stopped
type Advertiser struct {
	config Config
	server *mdns.Server
}

// Device describes a discovered beatbox
type Device struct {
	Name     string
	DeviceID string
	Host     string
	Port     int
	Path     string
	UDPPort  int
}

// Addr returns host:port of the WebSocket endpoint
func (d Device) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// TXT builds the TXT records describing the endpoints
func (c Config) TXT() []string {
	txt := []string{"path=" + c.Path}
	if c.DeviceID != "" {
		txt = append(txt, "id="+c.DeviceID)
	}
	if c.UDPPort > 0 {
		txt = append(txt, "udp="+strconv.Itoa(c.UDPPort))
	}
	return txt
}

// Advertise starts answering mDNS queries for this device
func Advertise(config Config) (*Advertiser, error) {
	ips, err := getLocalIPs()
	if err != nil {
		return nil, fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		config.Name,
		ServiceType,
		"",
		"",
		config.Port,
		ips,
		config.TXT(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", config.Name, config.Port, ServiceType)

	return &Advertiser{config: config, server: server}, nil
}

// Stop withdraws the advertisement
func (a *Advertiser) Stop() error {
	return a.server.Shutdown()
}

// Browse queries the local network for devices until timeout or ctx ends
func Browse(ctx context.Context, timeout time.Duration) ([]Device, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	var devices []Device
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			if !strings.Contains(entry.Name, ServiceType) {
				continue
			}
			dev := deviceFromEntry(entry)
			log.Printf("Discovered device: %s at %s", dev.Name, dev.Addr())
			devices = append(devices, dev)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout

	errChan := make(chan error, 1)
	go func() {
		errChan <- mdns.Query(params)
		close(entries)
	}()

	var err error
	select {
	case err = <-errChan:
	case <-ctx.Done():
		err = ctx.Err()
		// Query returns on its own timeout; wait so entries is closed
		<-errChan
	}
	<-done

	if err != nil {
		return devices, fmt.Errorf("mdns query failed: %w", err)
	}
	return devices, nil
}

func deviceFromEntry(entry *mdns.ServiceEntry) Device {
	name := strings.TrimSuffix(entry.Name, "."+ServiceType+".local.")
	dev := Device{
		Name: name,
		Port: entry.Port,
		Path: "/",
	}
	if entry.AddrV4 != nil {
		dev.Host = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		dev.Host = entry.AddrV6.String()
	}
	parseTXT(&dev, entry.InfoFields)
	return dev
}

func parseTXT(dev *Device, fields []string) {
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			dev.Path = value
		case "id":
			dev.DeviceID = value
		case "udp":
			if port, err := strconv.Atoi(value); err == nil {
				dev.UDPPort = port
			}
		}
	}
}

// getLocalIPs returns non-loopback IPv4 addresses of interfaces that are up
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return ips, nil
}
