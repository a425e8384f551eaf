package main

import (
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/server"
)

var CLI struct {
	Config   string `short:"c" default:"holdem-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Listen address as host:port (overrides config)"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn, error (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		log.Fatal("loading config failed", "path", CLI.Config, "err", err)
	}
	if CLI.Addr != "" {
		host, portStr, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			log.Fatal("bad --addr", "addr", CLI.Addr, "err", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatal("bad --addr port", "addr", CLI.Addr, "err", err)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	out := io.Writer(os.Stderr)
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal("opening log file failed", "path", cfg.Server.LogFile, "err", err)
		}
		defer f.Close()
		out = f
	}
	logger := log.NewWithOptions(out, log.Options{ReportTimestamp: true})
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting server",
		"addr", cfg.Address(),
		"stakes", strconv.Itoa(cfg.Table.SmallBlind)+"/"+strconv.Itoa(cfg.Table.BigBlind),
		"seats", cfg.Table.Seats,
		"npcs", len(cfg.NPCs),
		"humans", cfg.HumanSeats())

	srv := server.New(cfg, logger)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("shutting down")
		if err := srv.Stop(); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error("server failed", "err", err)
		kctx.Exit(1)
	}
}
