package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/twpayne/go-heightmap"
	"github.com/twpayne/go-heightmap/h5"
	"github.com/twpayne/go-heightmap/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	deps := cli.Dependencies{
		CreateContainer: func(path string) (heightmap.Container, error) {
			return h5.Create(path)
		},
		Version: version,
	}
	exitCode := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}
