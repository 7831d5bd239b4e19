package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/compat"
	"github.com/lixenwraith/logsink/ingest"
	"github.com/lixenwraith/logsink/inspect"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "logsink",
		Usage: "Write, read and serve rotating log files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (key=value lines, or a [sink] table for .toml)",
				Value: logsink.DefaultConfigPath,
			},
		},
		Commands: []*cli.Command{
			writeCommand(),
			readCommand(),
			archivesCommand(),
			serveCommand(),
		},
	}
}

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "Log a message through the configured sink",
		ArgsUsage: "MESSAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Usage: "INFO, WARNING or ERROR", Value: "INFO"},
			&cli.StringFlag{Name: "origin", Usage: "Origin identifier of the record"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			severity, err := logsink.ParseSeverity(c.String("level"))
			if err != nil {
				return err
			}
			msg := strings.Join(c.Args().Slice(), " ")
			if msg == "" {
				return fmt.Errorf("a message is required")
			}

			sink := logsink.InstanceFrom(c.String("config"))
			defer sink.Close()

			if origin := c.String("origin"); origin != "" {
				sink.Origin(origin).Log(severity, msg)
			} else {
				sink.Log(severity, msg)
			}
			return nil
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Print log lines, optionally filtered by level and time",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Log file (defaults to the configured logfile)"},
			&cli.StringSliceFlag{Name: "level", Usage: "Keep only these levels"},
			&cli.StringFlag{Name: "from", Usage: "Inclusive start, '2006-01-02 15:04:05' or RFC 3339"},
			&cli.StringFlag{Name: "to", Usage: "Inclusive end, '2006-01-02 15:04:05' or RFC 3339"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			filter, err := inspect.ParseFilter(c.StringSlice("level"), c.String("from"), c.String("to"))
			if err != nil {
				return err
			}

			reader := newReader(c)
			lines, err := reader.Read(filter)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(c.Root().Writer, line)
			}
			return nil
		},
	}
}

func archivesCommand() *cli.Command {
	return &cli.Command{
		Name:  "archives",
		Usage: "List rotated backups of the log file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Log file (defaults to the configured logfile)"},
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			archives, err := newReader(c).Archives()
			if err != nil {
				return err
			}
			w := c.Root().Writer
			if c.Bool("json") {
				if archives == nil {
					archives = []logsink.Archive{}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(archives)
			}
			for _, a := range archives {
				fmt.Fprintf(w, "%d\t%d\t%s\n", a.Index, a.Size, a.Path)
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP inspect endpoint and/or the TCP ingest endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "http", Usage: "Inspect listen address, e.g. :8080"},
			&cli.StringFlag{Name: "ingest", Usage: "Ingest address, e.g. tcp://127.0.0.1:9000"},
			&cli.BoolFlag{Name: "watch", Usage: "Reload the level when the config file changes"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			httpAddr, ingestAddr := c.String("http"), c.String("ingest")
			if httpAddr == "" && ingestAddr == "" && !c.Bool("watch") {
				return fmt.Errorf("nothing to serve: set --http, --ingest or --watch")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			configPath := c.String("config")
			sink := logsink.InstanceFrom(configPath)
			defer sink.Close()

			g, ctx := errgroup.WithContext(ctx)

			if httpAddr != "" {
				reader := logsink.NewReader(sink.Path()).WithNotice(io.Discard)
				srv := inspect.New(reader, sink, compat.NewFastHTTPAdapter(sink.Origin("inspect")))
				g.Go(func() error { return srv.Serve(ctx, httpAddr) })
				sink.Origin("inspect").LogInfo("inspect listening on " + httpAddr)
			}
			if ingestAddr != "" {
				srv := ingest.New(sink)
				g.Go(func() error { return srv.Serve(ctx, ingestAddr) })
				sink.Origin("ingest").LogInfo("ingest listening on " + ingestAddr)
			}
			if c.Bool("watch") {
				g.Go(func() error { return sink.WatchConfig(ctx, configPath) })
			}

			err := g.Wait()
			sink.LogInfo("serve stopped")
			return err
		},
	}
}

// newReader reads --file, or the logfile from the config when unset
func newReader(c *cli.Command) *logsink.Reader {
	path := c.String("file")
	if path == "" {
		cfg, err := logsink.ParseConfig(c.String("config"))
		if err != nil {
			fmt.Fprintf(c.Root().ErrWriter, "%v; using defaults\n", err)
		}
		path = cfg.LogFile
	}
	return logsink.NewReader(path).WithNotice(c.Root().ErrWriter)
}
