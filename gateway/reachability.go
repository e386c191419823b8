package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultPingTimeout = 5 * time.Second
	defaultCooldown     = 30 * time.Second
)

// Availability is the gateway's view of whether the backend answers.
type Availability int

const (
	Unknown Availability = iota
	Reachable
	Unreachable
)

func (a Availability) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	}
	return "invalid"
}

// Reachability pings the backend once and remembers the answer. After a
// network failure it fails requests fast until the cooldown expires or Reset
// is called.
type Reachability struct {
	baseURL      string
	client       *http.Client
	pingTimeout time.Duration
	cooldown     time.Duration
	now          func() time.Time
	logger       *log.Logger

	mu       sync.Mutex
	state    Availability
	markedAt time.Time
}

func newReachability(baseURL string, client *http.Client, logger *log.Logger) *Reachability {
	return &Reachability{
		baseURL:      baseURL,
		client:       client,
		pingTimeout: defaultPingTimeout,
		cooldown:     defaultCooldown,
		now:          time.Now,
		logger:       logger,
	}
}

// State reports the last known availability without probing.
func (r *Reachability) State() Availability {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Check returns nil when requests may proceed and ErrUnreachable otherwise.
// The first call, and the first call after a cooldown, pings the base URL.
func (r *Reachability) Check(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case Reachable:
		return nil
	case Unreachable:
		if r.now().Sub(r.markedAt) < r.cooldown {
			return ErrUnreachable
		}
	}

	r.setLocked(r.ping(ctx))
	if r.state == Unreachable {
		return ErrUnreachable
	}
	return nil
}

// MarkUnreachable records a transport failure seen by a regular request.
func (r *Reachability) MarkUnreachable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(Unreachable)
}

// Reset forgets the last answer so the next request pings again.
func (r *Reachability) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Unknown
	r.markedAt = time.Time{}
}

func (r *Reachability) setLocked(state Availability) {
	if r.state != state {
		r.logger.Debug("backend availability changed", "from", r.state, "to", state)
	}
	r.state = state
	r.markedAt = r.now()
}

// ping issues a GET against the base URL. Any status below 500 counts as
// reachable.
func (r *Reachability) ping(ctx context.Context) Availability {
	ctx, cancel := context.WithTimeout(ctx, r.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL, nil)
	if err != nil {
		r.logger.Error("building ping request", "error", err)
		return Unreachable
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("backend ping failed", "url", r.baseURL, "error", err)
		return Unreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		r.logger.Warn("backend ping returned server error", "status", resp.StatusCode)
		return Unreachable
	}

	return Reachable
}
