package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	escalation "github.com/reshetovitsme/chat-guard/internal/modules/escalation/service"
	"github.com/reshetovitsme/chat-guard/internal/shared/window"
)

// MemberPurger drops member joins that no longer matter
type MemberPurger interface {
	Purge(ctx context.Context, now time.Time) (int, error)
}

// Housekeeping periodically evicts idle window series, escalation state and
// stale member joins
type Housekeeping struct {
	windows    window.Store
	tracker    *escalation.Tracker
	members    MemberPurger
	interval   time.Duration
	windowIdle time.Duration
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHousekeeping creates the sweeper. Nil collaborators are skipped.
func NewHousekeeping(windows window.Store, tracker *escalation.Tracker, members MemberPurger, interval, windowIdle time.Duration) *Housekeeping {
	ctx, cancel := context.WithCancel(context.Background())
	return &Housekeeping{
		windows:    windows,
		tracker:    tracker,
		members:    members,
		interval:   interval,
		windowIdle: windowIdle,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins sweeping in the background
func (h *Housekeeping) Start() {
	h.wg.Add(1)
	go h.loop()
}

// Stop stops sweeping and waits for the running pass
func (h *Housekeeping) Stop() {
	h.cancel()
	h.wg.Wait()
}

func (h *Housekeeping) loop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.Sweep(h.ctx)
		}
	}
}

// Sweep runs one eviction pass
func (h *Housekeeping) Sweep(ctx context.Context) {
	now := h.now()

	if h.windows != nil {
		n := h.windows.Sweep(ctx, now, h.windowIdle)
		sweptEntries.WithLabelValues("windows").Add(float64(n))
	}

	if h.tracker != nil {
		n := h.tracker.Sweep(now)
		sweptEntries.WithLabelValues("escalation").Add(float64(n))
	}

	if h.members != nil {
		n, err := h.members.Purge(ctx, now)
		if err != nil {
			slog.Error("Failed to purge member joins", "error", err)
		}
		sweptEntries.WithLabelValues("members").Add(float64(n))
	}

	slog.Debug("Housekeeping pass finished")
}
