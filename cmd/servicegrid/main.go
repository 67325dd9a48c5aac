package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreybell91/ignite/internal/cli"
	"github.com/andreybell91/ignite/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Service kinds are not registered here; they decode as opaque
	// services and still compare by kind.
	cli.Execute(ctx, domain.DescriptorCodec{Registry: domain.NewKindRegistry()})
}
