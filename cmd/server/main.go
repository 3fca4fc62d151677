package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd(run).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
