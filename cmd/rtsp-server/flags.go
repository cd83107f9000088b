package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// core.Config / hooks.HookConfig so main.go can validate and map.
type cliConfig struct {
	listenAddrTCP  string
	listenAddrSCTP string
	logLevel       string

	liveByeTimeout time.Duration
	streamTimeout  time.Duration
	workerPoolMax  int
	permissive     bool
	defaultVHost   string

	showVersion bool

	hookScripts     []string // event_type=script_path pairs
	hookWebhooks    []string // event_type=webhook_url pairs
	hookStdioFormat string   // "json", "env", or "" (disabled)
	hookTimeout     string
	hookConcurrency int
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("rtsp-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	var hookScripts stringSliceFlag
	var hookWebhooks stringSliceFlag

	fs.StringVar(&cfg.listenAddrTCP, "listen", ":554", "TCP listen address for RTSP control connections")
	fs.StringVar(&cfg.listenAddrSCTP, "listen-sctp", "", "SCTP listen address (empty disables the SCTP listener)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.DurationVar(&cfg.liveByeTimeout, "live-bye-timeout", 6*time.Second, "Idle time before a soft RTCP BYE is emitted for a LIVE session")
	fs.DurationVar(&cfg.streamTimeout, "stream-timeout", 12*time.Second, "Idle time before a client's loop is hard-stopped")
	fs.IntVar(&cfg.workerPoolMax, "worker-pool-max", 0, "Maximum concurrently-running client loops (0 = derive from RLIMIT_NOFILE)")
	fs.BoolVar(&cfg.permissive, "permissive-unknown-protocol", false, "Admit connections of unclassifiable transport as TCP instead of rejecting them")
	fs.StringVar(&cfg.defaultVHost, "default-vhost", "default", "Name of the default virtual host")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Var(&hookScripts, "hook-script", "Hook script in format event_type=script_path (can be specified multiple times)")
	fs.Var(&hookWebhooks, "hook-webhook", "Hook webhook in format event_type=webhook_url (can be specified multiple times)")
	fs.StringVar(&cfg.hookStdioFormat, "hook-stdio-format", "", "Enable structured stdio output: json|env (empty=disabled)")
	fs.StringVar(&cfg.hookTimeout, "hook-timeout", "30s", "Timeout for hook execution")
	fs.IntVar(&cfg.hookConcurrency, "hook-concurrency", 10, "Maximum concurrent hook executions")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.hookScripts = hookScripts
	cfg.hookWebhooks = hookWebhooks

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}

	if cfg.streamTimeout <= 0 || cfg.liveByeTimeout <= 0 {
		return nil, errors.New("stream-timeout and live-bye-timeout must be positive")
	}
	if cfg.streamTimeout%cfg.liveByeTimeout != 0 || cfg.streamTimeout/cfg.liveByeTimeout < 2 {
		return nil, errors.New("stream-timeout must be an integer multiple (k>=2) of live-bye-timeout")
	}

	if err := validateHookConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringSliceFlag implements flag.Value for multiple string values
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ", ") }

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// validEventTypes mirrors internal/rtsp/core/hooks.EventType's constants.
var validEventTypes = map[string]bool{
	"connection_accept": true,
	"connection_close":  true,
	"soft_timeout":      true,
	"hard_timeout":      true,
	"shutdown":          true,
}

func validateHookConfig(cfg *cliConfig) error {
	if cfg.hookStdioFormat != "" && cfg.hookStdioFormat != "json" && cfg.hookStdioFormat != "env" {
		return fmt.Errorf("invalid hook-stdio-format %q, must be 'json' or 'env'", cfg.hookStdioFormat)
	}

	if cfg.hookTimeout != "" {
		if _, err := time.ParseDuration(cfg.hookTimeout); err != nil {
			return fmt.Errorf("invalid hook-timeout %q: %w", cfg.hookTimeout, err)
		}
	}

	if cfg.hookConcurrency < 1 || cfg.hookConcurrency > 100 {
		return fmt.Errorf("hook-concurrency must be between 1 and 100, got %d", cfg.hookConcurrency)
	}

	for _, script := range cfg.hookScripts {
		if err := validateHookAssignment("hook-script", script); err != nil {
			return err
		}
	}
	for _, webhook := range cfg.hookWebhooks {
		if err := validateHookAssignment("hook-webhook", webhook); err != nil {
			return err
		}
	}

	return nil
}

func validateHookAssignment(flagName, assignment string) error {
	parts := strings.SplitN(assignment, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid %s format %q, expected event_type=value", flagName, assignment)
	}

	eventType, value := parts[0], parts[1]
	if eventType == "" {
		return fmt.Errorf("invalid %s: event type cannot be empty", flagName)
	}
	if value == "" {
		return fmt.Errorf("invalid %s: value cannot be empty", flagName)
	}
	if !validEventTypes[eventType] {
		return fmt.Errorf("invalid %s: unknown event type %q", flagName, eventType)
	}

	return nil
}
