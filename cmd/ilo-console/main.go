// Command ilo-console connects to a management processor's remote console,
// decodes the binary DVC video stream, and drives a GUI surface from it.
/*------------------------------------------------------------------
 *
 * Purpose:	Load credentials, authenticate, open the console transport,
 *		and run the decoder/GUI/keepalive goroutines until the user
 *		quits or the connection drops.
 *
 * Usage:	ilo-console -a auth.json
 *
 *---------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/kvmconsole/ilo2console/internal/dvc"
	"github.com/kvmconsole/ilo2console/internal/gui"
	"github.com/kvmconsole/ilo2console/internal/session"
	"github.com/kvmconsole/ilo2console/internal/transport"
)

const (
	keepaliveInterval = 15 * time.Second
	shutdownGrace     = 100 * time.Millisecond
)

func main() {
	authPath := pflag.StringP("auth", "a", "auth.json", "path to the JSON credentials file")
	pflag.Parse()

	configureLogging()

	if err := run(*authPath); err != nil {
		log.Error("ilo-console: exiting", "err", err)
		os.Exit(1)
	}
}

// configureLogging sets the log level from ILO_CONSOLE_LOG (one of debug,
// info, warn, error); unset or unrecognized values default to info.
func configureLogging() {
	level := log.InfoLevel
	if v, ok := os.LookupEnv("ILO_CONSOLE_LOG"); ok {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		} else {
			log.Warn("ilo-console: ignoring unrecognized ILO_CONSOLE_LOG value", "value", v)
		}
	}
	log.SetLevel(level)
}

func run(authPath string) error {
	creds, err := session.LoadCredentials(authPath)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	auth := newHTTPAuthenticator()
	info, updated, err := auth.Authenticate(creds)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	if err := updated.Save(authPath); err != nil {
		log.Warn("ilo-console: could not persist refreshed credentials", "err", err)
	}

	params, err := session.FromScrapedParameters(creds.Hostname, info)
	if err != nil {
		return fmt.Errorf("building session parameters: %w", err)
	}

	events := make(chan dvc.Event, 256)
	requests := make(chan dvc.Request, 16)
	outbound := make(chan transport.Outbound, 16)

	decoder := dvc.New(events, requests)
	tr, err := transport.New(params, decoder, events)
	if err != nil {
		return fmt.Errorf("preparing transport: %w", err)
	}
	if err := tr.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer tr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	transportErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tr.Run(ctx, outbound); err != nil {
			log.Error("ilo-console: transport stopped", "err", err)
			transportErr <- err
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runKeepalive(ctx, outbound)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		forwardDecoderRequests(ctx, requests, tr, outbound)
	}()

	surface := gui.LogSurface{}
	gui.Loop(ctx, events, surface) // returns once ctx is canceled

	if err := waitWithGrace(&wg, shutdownGrace); err != nil {
		return err
	}
	select {
	case err := <-transportErr:
		return err
	default:
		return nil
	}
}

func runKeepalive(ctx context.Context, outbound chan<- transport.Outbound) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case outbound <- transport.Outbound{Kind: transport.OutboundKeepalive}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// forwardDecoderRequests translates decoder-originated requests (refresh,
// rekey) into transport actions.
func forwardDecoderRequests(ctx context.Context, requests <-chan dvc.Request, tr *transport.Transport, outbound chan<- transport.Outbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			switch req.Kind {
			case dvc.RequestRefresh:
				select {
				case outbound <- transport.Outbound{Kind: transport.OutboundRefreshRequest}:
				case <-ctx.Done():
					return
				}
			case dvc.RequestUpdateEncryptionKey:
				tr.UpdateEncryptionKey()
			}
		}
	}
}

// waitWithGrace waits for wg to finish, but gives up after grace so a
// stuck goroutine can't block process exit.
func waitWithGrace(wg *sync.WaitGroup, grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(grace):
		log.Warn("ilo-console: shutdown grace period elapsed, exiting anyway")
		return nil
	}
}
