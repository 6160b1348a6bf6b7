package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/config"
	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/host"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/metrics"
	"github.com/danielpatrickdp/launch-gate/internal/remote"
	"github.com/danielpatrickdp/launch-gate/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive launch-gate session",
		Long: `Run fetches the launch status and prints every gate transition.

Commands read from stdin:
  fetch     re-check the status (same as returning to the foreground)
  dismiss   press the cancel button of the showing alert
  confirm   press the default button of the showing alert
  state     print the current gate state
  quit      end the session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address (overrides metrics_addr)")

	return cmd
}

// #region run
func runGate(ctx context.Context, in io.Reader, out io.Writer, metricsAddr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	timeout, _ := cfg.Timeout()
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}

	fetcher, closeFetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	var j session.Journal
	if cfg.JournalPath != "" {
		store, err := journal.NewStore(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
		j = store
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, reg, logger)
		defer srv.Close()
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	exitCodes := make(chan int, 1)
	terminator := host.NewTerminator(func(code int) {
		select {
		case exitCodes <- code:
		default:
		}
	}, logger)

	printer := &statePrinter{w: out}
	sess, err := session.New(session.Config{
		AppName:      cfg.AppName,
		DefaultText:  cfg.DefaultText(),
		Fetcher:      fetcher,
		Opener:       host.NewPrintOpener(out),
		Terminator:   terminator,
		FetchTimeout: timeout,
		Journal:      j,
		Metrics:      recorder,
		Logger:       logger,
		Observer:     printer.observe,
	})
	if err != nil {
		return err
	}
	logger.Info("gate session started", "session", sess.ID(), "app", cfg.AppName)

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()
	stop := func() error {
		cancel()
		return <-runDone
	}

	if err := sess.Start(ctx); err != nil {
		stop()
		return fmt.Errorf("start session: %w", err)
	}

	lines := readLines(ctx, in)
	for {
		select {
		case code := <-exitCodes:
			if err := stop(); err != nil {
				return err
			}
			printer.printf("terminated (code %d)\n", code)
			return nil
		case <-ctx.Done():
			return stop()
		case line, ok := <-lines:
			if !ok {
				return stop()
			}
			command := strings.TrimSpace(line)
			if command == "" {
				continue
			}
			if command == "quit" || command == "exit" {
				return stop()
			}
			if command == "state" {
				printer.printf("%s\n", describe(sess.State()))
				continue
			}
			intent, err := commandIntent(command, sess.State())
			if err != nil {
				printer.printf("error: %v\n", err)
				continue
			}
			if err := sess.Submit(ctx, intent); err != nil {
				printer.printf("error: %v\n", err)
			}
		}
	}
}

// #endregion run

// #region repl
// commandIntent maps a REPL command to the intent of the matching alert button.
func commandIntent(command string, st gate.State) (gate.Intent, error) {
	switch command {
	case "fetch", "resume":
		return gate.RequestFetch{}, nil
	case "dismiss", "confirm":
		alert := st.ActiveAlert()
		if alert == nil {
			return nil, errors.New("no alert showing")
		}
		role := gate.RoleDefault
		if command == "dismiss" {
			role = gate.RoleCancel
		}
		if b, ok := findButton(alert, role); ok {
			return b.Intent, nil
		}
		if b, ok := findButton(alert, gate.RoleDefault); ok {
			return b.Intent, nil
		}
		return nil, errors.New("alert has no buttons")
	}
	return nil, fmt.Errorf("unknown command %q (try fetch, dismiss, confirm, state, quit)", command)
}

func findButton(alert *gate.Alert, role gate.ButtonRole) (gate.AlertButton, bool) {
	for _, b := range alert.Buttons {
		if b.Role == role {
			return b, true
		}
	}
	return gate.AlertButton{}, false
}

func describe(st gate.State) string {
	status := "none"
	if st.Status != nil {
		status = string(st.Status.Kind())
	}
	line := fmt.Sprintf("[gate] status=%s fetching=%t content=%t", status, st.IsFetching, st.CanShowContent())
	if alert := st.ActiveAlert(); alert != nil {
		labels := make([]string, len(alert.Buttons))
		for i, b := range alert.Buttons {
			labels[i] = b.Label
		}
		line += fmt.Sprintf(" alert=%s title=%q message=%q buttons=[%s]",
			st.ActiveSlot(), alert.Title, alert.Message, strings.Join(labels, "|"))
	}
	return line
}

// statePrinter writes a line per distinct gate state.
type statePrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (p *statePrinter) observe(st gate.State) {
	line := describe(st)
	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.w, line)
}

func (p *statePrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// #endregion repl

// #region wiring
func buildFetcher(cfg config.Config) (session.StatusFetcher, func(), error) {
	if cfg.StatusAddr != "" {
		client, err := remote.NewStatusClient(cfg.StatusAddr)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	}
	return host.FileFetcher{Path: cfg.StatusFile}, func() {}, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// #endregion wiring
