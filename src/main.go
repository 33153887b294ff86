package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-sampler/src/decode"
	"github.com/jinjor/desktop-sampler/src/kit"
	"github.com/jinjor/desktop-sampler/src/sampler"
	"golang.org/x/sync/errgroup"
)

const numPads = 16

var (
	sockFileName = flag.String("sock", "/tmp/desktop-sampler.sock", "unix socket for the UI connection")
	settingsPath = flag.String("settings", defaultSettingsPath(), "settings file")
	kitPath      = flag.String("kit", "", "kit to load on startup (overrides the last used kit)")
	midiPrefix   = flag.String("midi", "", "name prefix of the MIDI input port to listen to")
)

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "desktop-sampler.yaml"
	}
	return filepath.Join(dir, "desktop-sampler", "settings.yaml")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings, err := kit.LoadSettings(*settingsPath)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	s, err := sampler.NewSampler()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer s.Close()
	s.SetOneShot(settings.OneShot)

	kits := kit.NewManager(decode.Basic())
	startupKit := settings.LastKit
	if *kitPath != "" {
		startupKit = *kitPath
	}
	if startupKit != "" {
		if err := kits.Import(s, startupKit); err != nil {
			log.Printf("could not load kit %s: %v\n", startupKit, err)
		}
	}

	prefix := *midiPrefix
	if prefix == "" {
		prefix = settings.MidiPrefix
	}
	go func() {
		for data := range sampler.ListenToMidiIn(ctx, prefix) {
			s.PushRawMessage(data)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(ctx)
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, s, kits)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, s)
		})
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	settings.LastKit = kits.LastKit()
	settings.OneShot = s.OneShot()
	if err := settings.Save(*settingsPath); err != nil {
		log.Printf("error while saving settings: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, f func(net.Conn) error) error {
	os.Remove(*sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", *sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closeing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(*sockFileName)
	}()
	log.Printf("start listening...\n")
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, s *sampler.Sampler, kits *kit.Manager) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			return err
		}
		if !handleKitCommand(s, kits, command) {
			s.CommandCh <- command
		}
		log.Printf("received: %s\n", string(line))
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

// handleKitCommand runs the commands that touch the filesystem. They stay
// out of the engine so decoding never happens behind its lock.
func handleKitCommand(s *sampler.Sampler, kits *kit.Manager, command []string) bool {
	var err error
	switch command[0] {
	case "load_pad":
		err = loadIndexed(command, numPads, func(pad int, path string) error {
			return kits.LoadPad(s, pad, path)
		})
	case "load_note":
		err = loadIndexed(command, 128, func(note int, path string) error {
			return kits.LoadNote(s, note, path)
		})
	case "clear_pad":
		var pad int
		if pad, err = parseIndex(command, numPads); err == nil {
			kits.ClearPad(s, pad)
		}
	case "clear_note":
		var note int
		if note, err = parseIndex(command, 128); err == nil {
			kits.ClearNote(s, note)
		}
	case "import_kit":
		if len(command) < 2 {
			err = fmt.Errorf("import_kit needs a path")
		} else {
			err = kits.Import(s, command[1])
		}
	case "export_kit":
		if len(command) < 2 {
			err = fmt.Errorf("export_kit needs a path")
		} else {
			err = kits.Export(s, command[1])
		}
	default:
		return false
	}
	if err != nil {
		log.Printf("command %v failed: %v\n", command, err)
	}
	return true
}

func loadIndexed(command []string, limit int, load func(int, string) error) error {
	if len(command) < 3 {
		return fmt.Errorf("%s needs an index and a path", command[0])
	}
	index, err := parseIndex(command, limit)
	if err != nil {
		return err
	}
	return load(index, command[2])
}

func parseIndex(command []string, limit int) (int, error) {
	if len(command) < 2 {
		return 0, fmt.Errorf("%s needs an index", command[0])
	}
	value, err := strconv.Atoi(command[1])
	if err != nil {
		return 0, err
	}
	if value < 0 || value >= limit {
		return 0, fmt.Errorf("%s: index %d out of range", command[0], value)
	}
	return value, nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func sendReports(ctx context.Context, conn net.Conn, s *sampler.Sampler) error {
	t := time.NewTicker(time.Second / 30)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			line := "pads"
			for pad := 0; pad < numPads; pad++ {
				sounding, velocity := s.PadActivity(pad)
				if !sounding {
					velocity = 0
				}
				line += " " + strconv.FormatFloat(velocity, 'f', 3, 64)
			}
			select {
			case <-ctx.Done():
				log.Println("sendReports() interrupted")
				break loop
			default:
				conn.Write([]byte(line + "\n"))
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
