// Package host provides the process-level collaborators a launch-gate session
// needs when run from the command line.
package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
)

// #region terminator
// Terminator exits the process after a delay. The first ScheduleExit wins;
// later calls are ignored.
type Terminator struct {
	exit   func(code int)
	logger *slog.Logger

	once sync.Once
}

// NewTerminator creates a terminator that calls exit. A nil exit uses os.Exit.
func NewTerminator(exit func(code int), logger *slog.Logger) *Terminator {
	if exit == nil {
		exit = os.Exit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminator{exit: exit, logger: logger}
}

// ScheduleExit arranges for exit(0) after the given delay. It never blocks.
func (t *Terminator) ScheduleExit(after time.Duration) {
	t.once.Do(func() {
		t.logger.Info("process exit scheduled", "after", after)
		time.AfterFunc(after, func() { t.exit(0) })
	})
}

// #endregion terminator

// #region opener
// PrintOpener writes URLs to w instead of handing them to the desktop.
type PrintOpener struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrintOpener returns an opener writing to w.
func NewPrintOpener(w io.Writer) *PrintOpener {
	return &PrintOpener{w: w}
}

// Open prints the URL. Write errors are ignored.
func (o *PrintOpener) Open(url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, "open %s\n", url)
}

// #endregion opener

// #region file-fetcher
// FileFetcher reads the status document from a local JSON file on every fetch.
type FileFetcher struct {
	Path string
}

// Fetch implements session.StatusFetcher.
func (f FileFetcher) Fetch(ctx context.Context) (gate.AppUpdateStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, gate.NewFetchError("status fetch cancelled", err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, gate.NewFetchError("status unavailable", err)
	}
	status, err := wire.ParseStatus(data)
	if err != nil {
		return nil, gate.NewFetchError("status malformed", err)
	}
	return status, nil
}

// #endregion file-fetcher
