package core

import (
	"fmt"
	"sync"
)

// tunnelPair is the shared state for one RTSP-over-HTTP tunnel, referenced
// by both paired Clients. Neither Client ever writes to the other's
// fields directly; get and post are fixed at construction, and freed is
// the only mutable state, guarded by mu so the asymmetric teardown rule
// runs exactly once no matter which side's goroutine gets there first.
type tunnelPair struct {
	mu    sync.Mutex
	get   *Client
	post  *Client
	freed bool
}

// Pair links two already-admitted Clients as an RTSP-over-HTTP tunnel.
// The pair link is established by the RTSP layer before the second
// connection enters the core. getID is the GET (server→client) side,
// postID is the POST (client→server, RTSP-carrying) side; the asymmetry
// is what teardown uses to decide who frees whom.
func (core *Core) Pair(getID, postID string) error {
	get, ok := core.registry.get(getID)
	if !ok {
		return fmt.Errorf("core: pair: unknown GET client %s", getID)
	}
	post, ok := core.registry.get(postID)
	if !ok {
		return fmt.Errorf("core: pair: unknown POST client %s", postID)
	}
	if get == post {
		return fmt.Errorf("core: pair: GET and POST client must differ")
	}

	tp := &tunnelPair{get: get, post: post}
	get.tunnel.Store(tp)
	post.tunnel.Store(tp)
	return nil
}
