// ABOUTME: Entry point for the beatbox device
// ABOUTME: Parses CLI flags, sets up logging and runs the beatbox application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/app"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/sound"
	"github.com/Resonate-Protocol/resonate-beatbox/internal/version"
)

var (
	name         = flag.String("name", "", "Device friendly name (default: hostname-beatbox)")
	sampleRate   = flag.Int("rate", 48000, "Output sample rate in Hz")
	channels     = flag.Int("channels", 2, "Output channel count")
	chunk        = flag.Int("chunk", 256, "Maximum frames mixed per loop iteration")
	poll         = flag.Duration("poll", 0, "Control loop interval (default 1ms)")
	tempo        = flag.Float64("tempo", 120, "Initial tempo in BPM (40-300)")
	volume       = flag.Float64("volume", 80, "Initial volume in percent (0-100)")
	patternIndex = flag.Int("pattern", 1, "Initial pattern index")
	patternsFile = flag.String("patterns", "", "YAML pattern library (default: built-in patterns)")
	hihat        = flag.String("hihat", "", "Hi-hat sample file (WAV, MP3, FLAC, Opus, raw s16le)")
	snare        = flag.String("snare", "", "Snare sample file")
	bassdrum     = flag.String("bassdrum", "", "Bass drum sample file")
	backend      = flag.String("backend", "oto", "Audio backend: oto, malgo or null")
	record       = flag.String("record", "", "Also record the output mix to this WAV file")
	udpAddr      = flag.String("udp", ":12345", "UDP command address (empty to disable)")
	port         = flag.Int("port", 8928, "WebSocket control port (0 to disable)")
	noMDNS       = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	logFile      = flag.String("log-file", "beatbox.log", "Log file path")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	deviceName := *name
	if deviceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		deviceName = fmt.Sprintf("%s-beatbox", hostname)
	}

	log.Printf("Starting %s: %s", version.String(), deviceName)
	if *debug {
		log.Printf("Debug logging enabled")
	}

	wsAddr := ""
	if *port > 0 {
		wsAddr = fmt.Sprintf(":%d", *port)
	}

	config := app.Config{
		Name:         deviceName,
		SampleRate:   *sampleRate,
		Channels:     *channels,
		ChunkSize:    *chunk,
		Backend:      *backend,
		PollInterval: *poll,
		Tempo:        *tempo,
		Volume:       *volume,
		Pattern:      *patternIndex,
		PatternsFile: *patternsFile,
		RecordFile:   *record,
		Samples: map[sound.Instrument]string{
			sound.HiHat:    *hihat,
			sound.Snare:    *snare,
			sound.BassDrum: *bassdrum,
		},
		UDPAddr:    *udpAddr,
		WSAddr:     wsAddr,
		EnableMDNS: !*noMDNS && wsAddr != "",
		UseTUI:     useTUI,
		Debug:      *debug,
	}

	beatbox, err := app.New(config)
	if err != nil {
		log.Fatalf("Failed to start beatbox: %v", err)
	}

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := beatbox.Run(ctx); err != nil {
		log.Printf("Beatbox error: %v", err)
		os.Exit(1)
	}
}
