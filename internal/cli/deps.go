// Package cli implements the heightmap command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/twpayne/go-heightmap"
)

// A ContainerFactory creates the output container at path.
type ContainerFactory func(path string) (heightmap.Container, error)

// Dependencies wires runtime services.
type Dependencies struct {
	HTTPClient      heightmap.HTTPClient
	CreateContainer ContainerFactory
	Version         string
}

var errNoContainerFactory = errors.New("no container factory")

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(normalizeArgs(cmd.Flags(), args))

	if err := cmd.ExecuteContext(ctx); err != nil {
		if msg := err.Error(); msg != "" {
			_, _ = fmt.Fprintln(stderr, "heightmap: "+msg)
		}
		return 1
	}
	return 0
}
