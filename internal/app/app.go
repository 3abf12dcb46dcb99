// ABOUTME: Beatbox application orchestration
// ABOUTME: Builds samples, patterns, device, control loop and remote endpoints and runs them
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/discovery"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/mixer"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/pattern"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/remote"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/ui"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/units"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/version"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio/output"
)

const drainTimeout = 2 * time.Second

// Config holds application configuration
type Config struct {
	Name     string
	DeviceID string

	SampleRate int
	Channels   int
	ChunkSize  int
	BufferMs   int
	Backend    string

	PollInterval time.Duration
	Tempo        float64
	Volume       float64 // percent; zero is silent
	Pattern      int
	PatternsFile string
	RecordFile   string // empty disables recording

	// Samples maps instruments to sample files; missing ones are synthesized
	Samples map[sound.Instrument]string

	UDPAddr    string // empty disables the UDP endpoint
	WSAddr     string // empty disables the WebSocket endpoint
	EnableMDNS bool
	UseTUI     bool
	Debug      bool

	// Device overrides Backend when set
	Device output.Device
}

// App is the running beatbox
type App struct {
	config   Config
	patterns *pattern.Library
	device   output.Device
	loop     *control.Loop

	udp    *remote.UDPServer
	ws     *remote.WebSocketServer
	wsLn   net.Listener
	tui    *ui.TUI
	tuiSrc *control.Source
	udpSrc *control.Source
	wsSrc  *control.Source
}

// New builds the application and binds its network endpoints
func New(config Config) (*App, error) {
	applyDefaults(&config)

	tempo, err := units.NewTempo(config.Tempo)
	if err != nil {
		return nil, fmt.Errorf("invalid -tempo: %w", err)
	}
	volume, err := units.NewVolume(config.Volume)
	if err != nil {
		return nil, fmt.Errorf("invalid -volume: %w", err)
	}

	patterns := pattern.Builtin()
	if config.PatternsFile != "" {
		patterns, err = pattern.LoadLibrary(config.PatternsFile)
		if err != nil {
			return nil, err
		}
	}
	log.Printf("Pattern library: %v", patterns.Names())

	bank, err := loadBank(config)
	if err != nil {
		return nil, err
	}

	mix, err := mixer.New(bank, config.Channels, config.ChunkSize)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   config,
		patterns: patterns,
		tuiSrc:   control.NewSource("tui", control.DefaultSourceCapacity),
		udpSrc:   control.NewSource("udp", control.DefaultSourceCapacity),
		wsSrc:    control.NewSource("websocket", control.DefaultSourceCapacity),
	}

	if err := a.bindRemotes(); err != nil {
		a.closeRemotes()
		return nil, err
	}

	a.device = config.Device
	if a.device == nil {
		format := audio.Format{Codec: "pcm", SampleRate: config.SampleRate, Channels: config.Channels, BitDepth: 16}
		a.device, err = output.Open(config.Backend, format, config.BufferMs)
		if err != nil {
			a.closeRemotes()
			return nil, fmt.Errorf("failed to open output: %w", err)
		}
	}

	if config.RecordFile != "" {
		format := audio.Format{Codec: "pcm", SampleRate: config.SampleRate, Channels: config.Channels, BitDepth: 16}
		rec, err := output.NewRecorder(a.device, format, config.RecordFile)
		if err != nil {
			a.device.Close()
			a.closeRemotes()
			return nil, err
		}
		log.Printf("Recording output to %s", config.RecordFile)
		a.device = rec
	}

	if config.UseTUI {
		a.tui = ui.New(config.Name, patterns.Names(), a.tuiSrc)
	}

	a.loop, err = control.NewLoop(control.Config{
		Patterns:     patterns,
		Pattern:      config.Pattern,
		Tempo:        tempo,
		Volume:       volume,
		PollInterval: config.PollInterval,
		OnStatus:     a.publishStatus,
		Debug:        config.Debug,
	}, mix, a.device, a.tuiSrc, a.udpSrc, a.wsSrc)
	if err != nil {
		a.closeRemotes()
		a.device.Close()
		return nil, err
	}

	return a, nil
}

func applyDefaults(config *Config) {
	if config.Name == "" {
		config.Name = "beatbox"
	}
	if config.DeviceID == "" {
		config.DeviceID = uuid.New().String()
	}
	if config.SampleRate == 0 {
		config.SampleRate = 48000
	}
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = mixer.DefaultChunkSize
	}
	if config.BufferMs == 0 {
		config.BufferMs = 100
	}
	if config.PollInterval == 0 {
		config.PollInterval = control.DefaultPollInterval
	}
	if config.Tempo == 0 {
		config.Tempo = 120
	}
}

// loadBank decodes configured samples and synthesizes the rest
func loadBank(config Config) (*sound.Bank, error) {
	samples := sound.Synthesize(config.SampleRate)

	for inst, path := range config.Samples {
		if path == "" {
			continue
		}
		pcm, err := decode.LoadMono(path, config.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s sample: %w", inst, err)
		}
		samples[inst] = pcm
	}

	for _, inst := range sound.All() {
		if path := config.Samples[inst]; path == "" {
			log.Printf("Using synthesized %s sample", inst)
		}
	}

	return sound.NewBank(samples)
}

func (a *App) bindRemotes() error {
	if a.config.UDPAddr != "" {
		udp, err := remote.ListenUDP(a.config.UDPAddr, remote.NewCommander(a.udpSrc, a.patterns.Len()), a.config.Debug)
		if err != nil {
			return err
		}
		a.udp = udp
	}

	if a.config.WSAddr != "" {
		ln, err := net.Listen("tcp", a.config.WSAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", a.config.WSAddr, err)
		}
		a.wsLn = ln
		a.ws = remote.NewWebSocketServer(remote.WebSocketConfig{
			DeviceID: a.config.DeviceID,
			Name:     a.config.Name,
			Version:  version.Version,
			Patterns: a.patterns.Names(),
			Debug:    a.config.Debug,
		}, remote.NewCommander(a.wsSrc, a.patterns.Len()))
	}

	return nil
}

func (a *App) closeRemotes() {
	if a.udp != nil {
		a.udp.Close()
	}
	if a.wsLn != nil {
		a.wsLn.Close()
	}
}

// UDPAddr returns the bound UDP endpoint address, or nil if disabled
func (a *App) UDPAddr() net.Addr {
	if a.udp == nil {
		return nil
	}
	return a.udp.Addr()
}

// WSAddr returns the bound WebSocket listener address, or nil if disabled
func (a *App) WSAddr() net.Addr {
	if a.wsLn == nil {
		return nil
	}
	return a.wsLn.Addr()
}

// Status returns the latest loop status
func (a *App) Status() control.Status {
	return a.loop.Status()
}

func (a *App) publishStatus(st control.Status) {
	if a.ws != nil {
		a.ws.PublishStatus(st)
	}
	if a.tui != nil {
		a.tui.Update(st)
	}
}

// Run plays until a stop command, ctx cancellation or a fatal device error,
// then drains and closes the output device.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if a.udp != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.udp.Serve(ctx); err != nil {
				log.Printf("UDP endpoint error: %v", err)
			}
		}()
	}

	var adv *discovery.Advertiser
	if a.ws != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.ws.Serve(ctx, a.wsLn); err != nil {
				log.Printf("WebSocket endpoint error: %v", err)
			}
		}()

		if a.config.EnableMDNS {
			adv = a.advertise()
		}
	}

	if a.tui != nil {
		go func() {
			if err := a.tui.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			// Quitting the TUI sends a stop event; cancel covers TUI failures
			cancel()
		}()
	}

	log.Printf("%s running as %s (device %s)", version.String(), a.config.Name, a.config.DeviceID)

	err := a.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if a.tui != nil {
		a.tui.Stop()
	}
	if adv != nil {
		if stopErr := adv.Stop(); stopErr != nil {
			log.Printf("mDNS shutdown error: %v", stopErr)
		}
	}
	cancel()
	wg.Wait()

	a.closeDevice()
	log.Printf("Beatbox stopped")
	return err
}

func (a *App) advertise() *discovery.Advertiser {
	port := 0
	if tcp, ok := a.wsLn.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	udpPort := 0
	if a.udp != nil {
		if addr, ok := a.udp.Addr().(*net.UDPAddr); ok {
			udpPort = addr.Port
		}
	}

	adv, err := discovery.Advertise(discovery.Config{
		Name:     a.config.Name,
		DeviceID: a.config.DeviceID,
		Port:     port,
		Path:     remote.Path,
		UDPPort:  udpPort,
	})
	if err != nil {
		log.Printf("Failed to start mDNS advertisement: %v", err)
		return nil
	}
	return adv
}

// closeDevice lets queued audio play out, then releases the device. The
// loop has returned, so no write is in progress.
func (a *App) closeDevice() {
	if d, ok := a.device.(output.Drainer); ok {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := d.Drain(ctx); err != nil {
			log.Printf("Output drain incomplete: %v", err)
		}
		cancel()
	}
	if err := a.device.Close(); err != nil {
		log.Printf("Error closing output: %v", err)
	}
}
