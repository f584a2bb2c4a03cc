package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "selfload",
		Short: "Bounded-concurrency HTTP load generator",
		Long: `selfload fires a fixed number of HTTP requests at a set of endpoints
from a bounded pool of workers and summarizes status codes and latency.

  selfload run --host http://localhost:3000 -n 500 -c 25
  selfload serve --listen :3000`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd(), newServeCmd())
	return root
}
