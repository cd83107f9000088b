package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/fengstream/rtsp-core/internal/logger"
	"github.com/fengstream/rtsp-core/internal/rtsp/core/hooks"
)

// Core is the top-level value threading the Listener, Admitter, registry,
// worker pool, and vhost table together as fields of one struct, so
// shutdown ordering is explicit and tests can build a hermetic instance.
type Core struct {
	cfg      *Config
	registry *ClientRegistry
	pool     *workerPool
	vhosts   *VHostTable
	listener *Listener
	admitter *Admitter
	hooks    *hooks.HookManager
	hookSink hookSink
	log      zerolog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopFlag atomic.Bool
	wg       sync.WaitGroup
}

// New validates cfg, builds the core's supporting structures, and binds
// its listening sockets. It does not start accepting connections; call
// Start for that.
func New(cfg Config, hookCfg hooks.HookConfig) (*Core, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	logger.Init()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	lg := *logger.Logger()

	pool, err := newWorkerPool(cfg.WorkerPoolMax)
	if err != nil {
		return nil, err
	}

	hm := hooks.NewHookManager(hookCfg, &lg)
	ctx, cancel := context.WithCancel(context.Background())

	core := &Core{
		cfg:      &cfg,
		registry: NewClientRegistry(),
		pool:     pool,
		vhosts:   NewVHostTable(cfg.DefaultVHostName),
		hooks:    hm,
		hookSink: newHookSink(hm),
		log:      lg,
		ctx:      ctx,
		cancel:   cancel,
	}
	core.admitter = newAdmitter(core)

	ln, err := newListener(core)
	if err != nil {
		return nil, err
	}
	core.listener = ln

	return core, nil
}

// Start launches the accept loop(s). It returns immediately; accepting
// happens on background goroutines until Stop is called.
func (core *Core) Start() {
	core.wg.Add(1)
	go func() {
		defer core.wg.Done()
		core.listener.serveTCP()
	}()

	if core.listener.sctp != nil {
		core.wg.Add(1)
		go func() {
			defer core.wg.Done()
			core.listener.serveSCTP()
		}()
	}
}

func (core *Core) stopping() bool { return core.stopFlag.Load() }

// Stop runs the shutdown path: stop accepting, broadcast loop-stop to
// every live client via forEach, then wait for the listener goroutines to
// notice the closed sockets. Each client's own teardown (identical to the
// runtime-error path) removes it from the registry; Stop does not wait
// for that — callers that need "everyone is gone" should poll
// core.registry.Len() or rely on the ConnectionClose hook.
func (core *Core) Stop() {
	core.stopFlag.Store(true)
	core.cancel()
	core.listener.close()

	core.registry.forEach(func(c *Client) {
		core.hookFire("shutdown", c)
		c.stop()
	})

	core.wg.Wait()
	core.hooks.Close()
}

func (core *Core) hookFire(kind string, c *Client) {
	if core.hookSink == nil {
		return
	}
	core.hookSink.Fire(kind, map[string]any{"conn_id": c.ID, "vhost": c.vhost.Name})
}

// Hooks exposes the hook manager so callers (cmd/rtsp-server) can register
// script/webhook hooks configured via flags before Start is called.
func (core *Core) Hooks() *hooks.HookManager { return core.hooks }

// Registry exposes the live-client table, mainly for tests asserting P1/P3/R2.
func (core *Core) Registry() *ClientRegistry { return core.registry }

// VHosts exposes the vhost table, mainly for tests asserting P3.
func (core *Core) VHosts() *VHostTable { return core.vhosts }

// ListenAddr returns the bound TCP address, useful when cfg.ListenAddrTCP
// was ":0" (tests binding an ephemeral port).
func (core *Core) ListenAddr() string {
	return core.listener.tcp.Addr().String()
}
