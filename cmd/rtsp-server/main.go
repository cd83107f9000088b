package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fengstream/rtsp-core/internal/logger"
	core "github.com/fengstream/rtsp-core/internal/rtsp/core"
	"github.com/fengstream/rtsp-core/internal/rtsp/core/hooks"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	hookCfg := hooks.HookConfig{
		Timeout:     cfg.hookTimeout,
		Concurrency: cfg.hookConcurrency,
		StdioFormat: cfg.hookStdioFormat,
	}

	srv, err := core.New(core.Config{
		ListenAddrTCP:             cfg.listenAddrTCP,
		ListenAddrSCTP:            cfg.listenAddrSCTP,
		LiveStreamByeTimeout:      cfg.liveByeTimeout,
		StreamTimeout:             cfg.streamTimeout,
		WorkerPoolMax:             cfg.workerPoolMax,
		PermissiveUnknownProtocol: cfg.permissive,
		DefaultVHostName:          cfg.defaultVHost,
		LogLevel:                  cfg.logLevel,
	}, hookCfg)
	if err != nil {
		fmt.Printf("failed to build server: %v\n", err)
		os.Exit(1)
	}

	if err := registerConfiguredHooks(srv, cfg); err != nil {
		fmt.Printf("invalid hook configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init()
	log := logger.Logger()

	srv.Start()
	log.Info().Str("addr", srv.ListenAddr()).Str("version", version).Msg("server started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("server stopped cleanly")
	case <-shutdownCtx.Done():
		log.Error().Msg("forced exit after timeout")
	}
}

// registerConfiguredHooks wires -hook-script/-hook-webhook flag pairs into
// the running server's hook manager.
func registerConfiguredHooks(srv *core.Core, cfg *cliConfig) error {
	mgr := srv.Hooks()

	for _, assignment := range cfg.hookScripts {
		eventType, scriptPath := splitAssignment(assignment)
		timeout, err := time.ParseDuration(cfg.hookTimeout)
		if err != nil {
			return err
		}
		hook := hooks.NewShellHook(eventType+"-script", scriptPath, timeout)
		if err := mgr.RegisterHook(hooks.EventType(eventType), hook); err != nil {
			return err
		}
	}

	for _, assignment := range cfg.hookWebhooks {
		eventType, url := splitAssignment(assignment)
		timeout, err := time.ParseDuration(cfg.hookTimeout)
		if err != nil {
			return err
		}
		hook := hooks.NewWebhookHook(eventType+"-webhook", url, timeout)
		if err := mgr.RegisterHook(hooks.EventType(eventType), hook); err != nil {
			return err
		}
	}

	return nil
}

func splitAssignment(s string) (eventType, value string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
