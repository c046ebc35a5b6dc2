// cmd/routenavd/main.go
package main

import (
	"context"
	"os"

	"github.com/dalemusser/routenav/app"
	"github.com/dalemusser/routenav/internal/routenavd"
)

func main() {
	if err := app.Run(context.Background(), routenavd.Hooks()); err != nil {
		os.Exit(1)
	}
}
