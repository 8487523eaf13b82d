package nutrition

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"diet-wizard/internal/diet"
	"diet-wizard/internal/wizard"

	"golang.org/x/sync/singleflight"
)

// ErrUnknownSession is returned by Wait for a session that was never entered or was discarded.
var ErrUnknownSession = errors.New("unknown wizard session")

// Observer is notified once for every fetch that resolves in a live session.
type Observer interface {
	ObserveFetch(sessionID string, outcome Outcome, latency time.Duration)
}

// Controller issues at most one diet request per wizard session and
// exposes its outcome to the result view.
type Controller struct {
	gen       diet.Generator
	timeout   time.Duration
	observers []Observer

	// in-flight requests are collapsed per session key
	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	outcome Outcome
	done    chan struct{}
}

// NewController creates a Controller. A zero timeout leaves requests bounded
// only by the generator's own client.
func NewController(gen diet.Generator, timeout time.Duration, observers ...Observer) *Controller {
	return &Controller{
		gen:       gen,
		timeout:   timeout,
		observers: observers,
		sessions:  make(map[string]*session),
	}
}

// CacheKey is the deduplication key for a session.
func CacheKey(sessionID string) string {
	return "nutrition:" + sessionID
}

// Enter is called when the result view is shown. It starts the session's fetch
// in the background if none was started yet and returns the current outcome.
func (c *Controller) Enter(store *wizard.Store) Outcome {
	id, profile := store.Snapshot()

	c.mu.Lock()
	s := c.slot(id)
	outcome := s.outcome
	c.mu.Unlock()

	if !outcome.Terminal() {
		go c.fetch(context.Background(), id, profile, false)
	}
	return outcome
}

// Fetch resolves the session's diet, blocking until the outcome is terminal or
// ctx is done. A cancelled ctx yields Pending; the request itself keeps running
// and its result is kept for the next caller.
func (c *Controller) Fetch(ctx context.Context, store *wizard.Store) Outcome {
	id, profile := store.Snapshot()
	return c.fetch(ctx, id, profile, true)
}

func (c *Controller) fetch(ctx context.Context, id string, profile wizard.Profile, create bool) Outcome {
	if o := c.Outcome(id); o.Terminal() {
		return o
	}

	ch := c.group.DoChan(CacheKey(id), func() (any, error) {
		return c.resolve(id, profile, create), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Outcome)
	case <-ctx.Done():
		return Pending()
	}
}

// Wait blocks until an entered session reaches a terminal outcome.
func (c *Controller) Wait(ctx context.Context, sessionID string) (Outcome, error) {
	c.mu.Lock()
	s, ok := c.sessions[sessionID]
	c.mu.Unlock()
	if !ok {
		return Outcome{}, ErrUnknownSession
	}

	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Pending(), ctx.Err()
	}
}

// Outcome returns the session's current outcome; unknown sessions are Pending.
func (c *Controller) Outcome(sessionID string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[sessionID]; ok {
		return s.outcome
	}
	return Pending()
}

// Discard tears a session down: its request is cancelled and whatever it
// returns afterwards is dropped.
func (c *Controller) Discard(sessionID string) {
	c.mu.Lock()
	s, ok := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	c.mu.Unlock()

	if ok {
		s.cancel()
	}
	c.group.Forget(CacheKey(sessionID))
}

// Len returns the number of sessions currently tracked.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// slot returns the session's table entry, creating a pending one. c.mu must be held.
func (c *Controller) slot(id string) *session {
	if s, ok := c.sessions[id]; ok {
		return s
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ctx:     ctx,
		cancel:  cancel,
		outcome: Pending(),
		done:    make(chan struct{}),
	}
	c.sessions[id] = s
	return s
}

// resolve performs the session's request unless its outcome is already known.
// With create unset, a session missing from the table was discarded and is not fetched.
func (c *Controller) resolve(id string, profile wizard.Profile, create bool) Outcome {
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		if !create {
			c.mu.Unlock()
			return Failed(ErrUnknownSession)
		}
		s = c.slot(id)
	}
	if s.outcome.Terminal() {
		c.mu.Unlock()
		return s.outcome
	}
	c.mu.Unlock()

	start := time.Now()
	outcome := c.request(s.ctx, profile)
	latency := time.Since(start)

	c.mu.Lock()
	live := c.sessions[id] == s
	if live {
		s.outcome = outcome
	} else {
		s.outcome = Failed(ErrUnknownSession)
	}
	close(s.done)
	c.mu.Unlock()
	s.cancel()

	if !live {
		log.Printf("Discarding diet result for closed session %s", id)
		return s.outcome
	}

	if outcome.Err != nil {
		log.Printf("Diet fetch failed for session %s: %v", id, outcome.Err)
	}
	for _, o := range c.observers {
		o.ObserveFetch(id, outcome, latency)
	}
	return outcome
}

func (c *Controller) request(ctx context.Context, profile wizard.Profile) Outcome {
	complete, err := profile.Complete()
	if err != nil {
		return Failed(err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	plan, err := c.gen.Create(ctx, complete)
	if err != nil {
		return Failed(err)
	}
	if plan.IsEmpty() {
		return Failed(&diet.MalformedResponseError{Reason: "empty diet"})
	}
	return Succeeded(plan)
}
