package game

import (
	"bufio"
	"context"
	"io"

	log "github.com/sirupsen/logrus"
)

// EchoConsole logs every byte read from r at debug level until r is
// exhausted or ctx is done. It has no effect on the game; it is there to
// check a terminal is attached while wiring up hardware.
//
// A read blocked on r is not interrupted by ctx, so the goroutine running
// EchoConsole may outlive the game until the next byte or EOF.
func EchoConsole(ctx context.Context, r io.Reader) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err != io.EOF {
				log.WithError(err).Debug("console read stopped")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Debugf("stdin read 0x%02X", b)
	}
}
