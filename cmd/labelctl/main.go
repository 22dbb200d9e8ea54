// Command labelctl fills a label form from the command line, runs the same
// postal-code and employee-code auto-fill as the browser form, and downloads
// the generated PDF from a running label server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "labelctl:", err)
		}
		os.Exit(1)
	}
}

// stderrNotifier prints alerts where a browser would show a dialog
type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Alert(message string) {
	fmt.Fprintln(n.w, "!", message)
}
