// Command wps-client talks to OGC Web Processing Service servers.
//
// Every flag can also be set through a WPS_* environment variable (dashes
// become underscores, e.g. WPS_URL, WPS_AUTH, WPS_PASSWORD) or a YAML
// file passed with --config.
//
// Password can be provided via:
//   - --password flag (least secure, visible in process list)
//   - WPS_PASSWORD environment variable (recommended)
//   - stdin prompt (if neither flag nor env var is set)
//
// Examples:
//
//	wps-client capabilities --url https://wps.example.org/wps
//	wps-client describe buffer --format yaml
//	wps-client execute buffer -i distance=250 -i "geom=@https://data.example.org/roads.gml;mimeType=application/gml+xml" -o buffered --async --wait
//	wps-client serve --addr 127.0.0.1:8080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
