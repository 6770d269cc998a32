// Command letta-mcp exposes a Letta agent server over the Model Context
// Protocol, either on stdio or on a streamable HTTP endpoint with a push
// channel.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/xuede/Letta-MCP-server-sub002/letta"
	"github.com/xuede/Letta-MCP-server-sub002/logger"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
	"github.com/xuede/Letta-MCP-server-sub002/server"
)

// Options are the CLI flags.
type Options struct {
	Transport string `short:"t" long:"transport" description:"transport to serve" choice:"stdio" choice:"http" default:"stdio"`
	Addr      string `long:"addr" description:"HTTP listen address" default:":3001"`
	Config    string `short:"c" long:"config" description:"path to a YAML config file"`
	LogLevel  string `long:"log-level" description:"diagnostics log level" default:"info"`
	Pretty    bool   `long:"pretty" description:"human readable diagnostics"`
}

func main() {
	options := &Options{}
	if _, err := flags.Parse(options); err != nil {
		os.Exit(1)
	}
	if err := run(options); err != nil {
		fmt.Fprintf(os.Stderr, "letta-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(options *Options) error {
	log := logger.New(logger.Options{Level: options.LogLevel, Pretty: options.Pretty})

	cfg, err := letta.LoadConfig(options.Config)
	if err != nil {
		return err
	}
	client := letta.NewClient(cfg, log)
	reg := registry.New()
	letta.Register(reg, client)

	srv, err := server.New(reg,
		server.WithLogger(log),
		server.WithImplementation(schema.Implementation{Name: "letta-mcp-server", Version: "1.0.0"}),
		server.WithInstructions("Tools, resources and prompts for managing agents on a Letta server."),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch options.Transport {
	case "stdio":
		log.Info("serving MCP on stdio", "letta", cfg.BaseURL)
		return srv.Stdio().Serve(ctx)
	case "http":
		httpServer := srv.HTTP(ctx, options.Addr)
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			log.Info("serving MCP over HTTP", "addr", options.Addr, "letta", cfg.BaseURL)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
		return group.Wait()
	default:
		return fmt.Errorf("unknown transport: %v", options.Transport)
	}
}
