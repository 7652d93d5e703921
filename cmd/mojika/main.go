// Command mojika runs a single LAN chat/file-transfer node: discovery
// beacon, encrypted transport, and the file transfer engine, all
// supervised until an interrupt or terminate signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/mojtab23/mojika/internal/logger"
	"github.com/mojtab23/mojika/pkg/mojika"
)

// cli's Mode argument is accepted for compatibility but unused: the core
// no longer distinguishes a server mode from any other.
type cli struct {
	Mode string `arg:"" optional:"" help:"Unused; accepted for compatibility."`
}

func main() {
	var params cli
	kong.Parse(&params)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mojika:", err)
		os.Exit(1)
	}
}

func run() error {
	h, err := mojika.New()
	if err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.L.Infoln("mojika: node", h.SelfPeer().String(), "listening, downloads at", h.DownloadDir())

	done := h.Start(ctx)
	<-ctx.Done()
	logger.L.Infoln("mojika: shutting down")
	return <-done
}
