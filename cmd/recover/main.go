// Command recover repairs truncated JSON from language models, either from
// the command line or as an HTTP service.
//
//	recover repair response.txt
//	echo '{"a": [1, 2' | recover parse --fallback '{}'
//	recover serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
