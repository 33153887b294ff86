package sampler

import (
	"context"
	"log"
	"strings"

	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn opens a MIDI input and streams its raw messages until ctx is
// canceled. The first device whose name starts with namePrefix is used; an
// empty prefix means the first device found.
func ListenToMidiIn(ctx context.Context, namePrefix string) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		// closed last, after the listener has been stopped
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if namePrefix != "" {
			for _, candidate := range ins {
				if strings.HasPrefix(candidate.String(), namePrefix) {
					in = candidate
					break
				}
			}
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			select {
			case ch <- data:
			default:
				// dropping beats blocking the driver callback
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}
