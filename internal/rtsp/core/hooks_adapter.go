package core

import (
	"context"

	"github.com/fengstream/rtsp-core/internal/rtsp/core/hooks"
)

// hookManagerAdapter satisfies hookSink by translating the core's simple
// (kind, fields) call shape into a hooks.Event, keeping the hooks package
// (and its stdio/webhook/shell execution machinery, adapted from the
// teacher's RTMP hook system) ignorant of core.Client entirely.
type hookManagerAdapter struct {
	mgr *hooks.HookManager
}

func newHookSink(mgr *hooks.HookManager) hookSink {
	if mgr == nil {
		return nil
	}
	return &hookManagerAdapter{mgr: mgr}
}

var eventKindMap = map[string]hooks.EventType{
	"connection_accept": hooks.EventConnectionAccept,
	"connection_close":  hooks.EventConnectionClose,
	"soft_timeout":      hooks.EventSoftTimeout,
	"hard_timeout":      hooks.EventHardTimeout,
	"shutdown":          hooks.EventShutdown,
}

func (a *hookManagerAdapter) Fire(kind string, fields map[string]any) {
	et, ok := eventKindMap[kind]
	if !ok {
		return
	}
	ev := hooks.NewEvent(et)
	if connID, ok := fields["conn_id"].(string); ok {
		ev.WithConnID(connID)
	}
	if vhost, ok := fields["vhost"].(string); ok {
		ev.WithVHost(vhost)
	}
	for k, v := range fields {
		if k == "conn_id" || k == "vhost" {
			continue
		}
		ev.WithData(k, v)
	}
	a.mgr.TriggerEvent(context.Background(), *ev)
}

// fire is a nil-safe convenience wrapper called from Client/ClientRunner
// sites, since hooks are optional.
func (c *Client) fire(kind string, extra map[string]any) {
	if c.hooks == nil {
		return
	}
	fields := map[string]any{"conn_id": c.ID, "vhost": c.vhost.Name}
	for k, v := range extra {
		fields[k] = v
	}
	c.hooks.Fire(kind, fields)
}
