package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smnsjas/go-wps/client"
	"github.com/smnsjas/go-wps/gateway"
	"github.com/smnsjas/go-wps/metrics"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

func outputPrinter(cmd *cobra.Command, v *viper.Viper) (printer, error) {
	f, err := parseFormat(v.GetString(keyFormat))
	if err != nil {
		return printer{}, err
	}
	return printer{w: cmd.OutOrStdout(), format: f}, nil
}

func newCapabilitiesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the processes offered by the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := outputPrinter(cmd, v)
			if err != nil {
				return err
			}
			svc, err := discover(cmd, v)
			if err != nil {
				return err
			}
			caps := svc.Capabilities()
			return p.print(caps, renderCapabilities(caps))
		},
	}
}

func newDescribeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [process...]",
		Short: "Describe processes (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := outputPrinter(cmd, v)
			if err != nil {
				return err
			}
			svc, err := discover(cmd, v)
			if err != nil {
				return err
			}
			descs, err := svc.DescribeAll(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return p.print(descs, renderDescriptions(descs))
		},
	}
}

func newExecuteCmd(v *viper.Viper) *cobra.Command {
	var (
		inputs  []string
		outputs []string
		async   bool
		raw     bool
		wait    bool
		outFile string
	)
	cmd := &cobra.Command{
		Use:   "execute <process>",
		Short: "Execute a process",
		Long: `Execute a process.

Inputs are id=value for literals, id=@href for references, and may carry
options after ';' (mimeType, encoding, schema, body, bodyRef):

  -i distance=250
  -i "geom=@https://data.example.org/roads.gml;mimeType=application/gml+xml"
  -i "features={\"type\":\"FeatureCollection\"};mimeType=application/json"

Outputs are an id, optionally followed by ';value' to request inline
transmission and the same format options:

  -o "buffered;value;mimeType=application/json"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := outputPrinter(cmd, v)
			if err != nil {
				return err
			}
			ins := make([]model.Input, 0, len(inputs))
			for _, s := range inputs {
				in, err := parseInput(s)
				if err != nil {
					return err
				}
				ins = append(ins, in)
			}
			outs := make([]model.OutputRequest, 0, len(outputs))
			for _, s := range outputs {
				out, err := parseOutput(s)
				if err != nil {
					return err
				}
				outs = append(outs, out)
			}

			svc, err := discover(cmd, v)
			if err != nil {
				return err
			}
			resp, err := svc.Execute(cmd.Context(), args[0], ins, outs, client.ExecuteOptions{Async: async, Raw: raw})
			if err != nil {
				return err
			}

			switch resp.Kind() {
			case protocol.ResponseRaw:
				return writeRaw(cmd, resp.Raw, outFile)
			case protocol.ResponseResult:
				return p.print(resp.Result, renderResult(resp.Result))
			case protocol.ResponseJob:
				if !wait {
					info := resp.Job.Info()
					return p.print(&info, renderStatus(&info))
				}
				policy := client.DefaultPollPolicy()
				if d := durationFlag(cmd, "poll-initial"); d > 0 {
					policy.InitialDelay = d
				}
				if d := durationFlag(cmd, "poll-max"); d > 0 {
					policy.MaxDelay = d
				}
				if d := durationFlag(cmd, "poll-min-interval"); d > 0 {
					policy.MinInterval = d
				}
				slog.Info("waiting for job", "job_id", resp.Job.ID())
				result, err := svc.Await(cmd.Context(), resp.Job, policy)
				if err != nil {
					return err
				}
				return p.print(result, renderResult(result))
			}
			return errors.New("empty execute response")
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&inputs, "input", "i", nil, "process input (repeatable)")
	f.StringArrayVarP(&outputs, "output", "o", nil, "requested output (repeatable)")
	f.BoolVar(&async, "async", false, "execute asynchronously")
	f.BoolVar(&raw, "raw", false, "request the raw output payload")
	f.BoolVar(&wait, "wait", false, "with --async, poll until the job completes")
	f.Duration("poll-initial", 0, "first poll delay (default 1s)")
	f.Duration("poll-max", 0, "maximum poll delay (default 30s)")
	f.Duration("poll-min-interval", 0, "minimum time between polls (default 500ms)")
	f.StringVar(&outFile, "out-file", "", "write a raw output to this file")
	return cmd
}

func writeRaw(cmd *cobra.Command, raw *protocol.RawOutput, path string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(raw.Body)
		return err
	}
	if err := os.WriteFile(path, raw.Body, 0600); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes (%s) to %s\n", len(raw.Body), raw.ContentType, path)
	return nil
}

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of an asynchronous job (WPS 2.0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := outputPrinter(cmd, v)
			if err != nil {
				return err
			}
			svc, err := discover(cmd, v)
			if err != nil {
				return err
			}
			info, err := svc.Protocol().GetStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.print(info, renderStatus(info))
		},
	}
}

func newResultCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Fetch the result of a succeeded job (WPS 2.0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := outputPrinter(cmd, v)
			if err != nil {
				return err
			}
			svc, err := discover(cmd, v)
			if err != nil {
				return err
			}
			r, err := svc.Protocol().GetResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.print(r, renderResult(r))
		},
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the WPS service as a JSON REST API",
		Long: `Serve the WPS service as a JSON REST API with Prometheus metrics at
/metrics. Set WPS_JWT_SECRET to require HS256 bearer tokens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := serviceURL(v)
			if err != nil {
				return err
			}
			cfg, err := clientConfig(v)
			if err != nil {
				return err
			}
			collector := metrics.New()
			cfg.Observer = collector
			if cfg.CircuitBreaker != nil {
				cfg.CircuitBreaker.OnStateChange = collector.RecordBreakerState
			}

			svc, err := client.Discover(cmd.Context(), u, cfg)
			if err != nil {
				return err
			}
			handler, err := gateway.New(gateway.Config{
				Service:   svc,
				BasePath:  basePath,
				JWTSecret: v.GetString("jwt-secret"),
				Metrics:   collector.Handler(),
				Logger:    slog.Default(),
			})
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path")
	cmd.Flags().String("jwt-secret", "", "HS256 secret for bearer tokens (use WPS_JWT_SECRET instead)")
	_ = v.BindPFlag("jwt-secret", cmd.Flags().Lookup("jwt-secret"))
	return cmd
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving wps gateway", "addr", addr)
	fmt.Fprintf(os.Stderr, "Serving WPS gateway on http://%s (OpenAPI at /openapi.json)\n", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
