package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
)

type pingServer struct {
	status atomic.Int32
	pings atomic.Int32
}

func (p *pingServer) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	p.pings.Add(1)
	w.WriteHeader(int(p.status.Load()))
}

func newReach(t *testing.T, ps *pingServer) (*Reachability, *time.Time) {
	t.Helper()
	srv := httptest.NewServer(ps)
	t.Cleanup(srv.Close)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	r := newReachability(srv.URL, srv.Client(), quietLogger())
	r.now = func() time.Time { return now }
	return r, &now
}

func TestReachabilityChecksOnce(t *testing.T) {
	ps := &pingServer{}
	ps.status.Store(http.StatusNotFound)
	r, _ := newReach(t, ps)

	be.Equal(t, Unknown, r.State())
	be.NilErr(t, r.Check(context.Background()))
	be.NilErr(t, r.Check(context.Background()))
	be.Equal(t, Reachable, r.State())
	be.Equal(t, int32(1), ps.pings.Load())
}

func TestReachabilityServerErrorIsUnreachable(t *testing.T) {
	ps := &pingServer{}
	ps.status.Store(http.StatusBadGateway)
	r, now := newReach(t, ps)

	err := r.Check(context.Background())
	be.True(t, errors.Is(err, ErrUnreachable))
	be.Equal(t, Unreachable, r.State())

	// within the cooldown no new check is made
	*now = now.Add(defaultCooldown / 2)
	be.True(t, errors.Is(r.Check(context.Background()), ErrUnreachable))
	be.Equal(t, int32(1), ps.pings.Load())

	// after the cooldown the backend is checked again
	ps.status.Store(http.StatusOK)
	*now = now.Add(defaultCooldown)
	be.NilErr(t, r.Check(context.Background()))
	be.Equal(t, Reachable, r.State())
	be.Equal(t, int32(2), ps.pings.Load())
}

func TestReachabilityMarkAndReset(t *testing.T) {
	ps := &pingServer{}
	ps.status.Store(http.StatusOK)
	r, _ := newReach(t, ps)

	be.NilErr(t, r.Check(context.Background()))
	r.MarkUnreachable()
	be.True(t, errors.Is(r.Check(context.Background()), ErrUnreachable))

	r.Reset()
	be.Equal(t, Unknown, r.State())
	be.NilErr(t, r.Check(context.Background()))
	be.Equal(t, int32(2), ps.pings.Load())
}

func TestAvailabilityString(t *testing.T) {
	tests := []struct {
		a    Availability
		want string
	}{
		{Unknown, "unknown"},
		{Reachable, "reachable"},
		{Unreachable, "unreachable"},
		{Availability(9), "invalid"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.want, tt.a.String())
	}
}
