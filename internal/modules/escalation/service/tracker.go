// Package service tracks repeat offenders per firewall rule and decides when
// escalation steps fire.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
)

// Outcome of recording one violation
type Outcome struct {
	// Count is the number of violations retained in the longest step window.
	Count int
	// Fired lists the indexes of the steps that fired on this violation.
	Fired []int
	// Reset is true when inactivity cleared the previous history.
	Reset bool
}

type state struct {
	hits       []time.Time
	last       time.Time
	idle       time.Duration
	firedAtCnt map[int]int
}

// Tracker keeps per (rule, offender) violation history in memory. Updates of
// one key are serialized; different keys proceed in parallel.
type Tracker struct {
	states      *xsync.MapOf[string, *state]
	defaultIdle time.Duration
}

// New creates a tracker. defaultIdle evicts histories of rules without
// resetAfterSeconds.
func New(defaultIdle time.Duration) *Tracker {
	return &Tracker{
		states:      xsync.NewMapOf[string, *state](),
		defaultIdle: defaultIdle,
	}
}

func key(ruleID string, offenderID int64) string {
	return fmt.Sprintf("%s:%d", ruleID, offenderID)
}

// Record appends a violation at `at` and evaluates every step against its own
// trailing window. A step fires each time its count reaches or exceeds the
// threshold at a count it has not fired for since the step last dropped below
// its threshold; firing never resets the history.
func (t *Tracker) Record(_ context.Context, ruleID string, offenderID int64, at time.Time, esc *domain.Escalation) (Outcome, error) {
	var out Outcome
	if esc == nil || len(esc.Steps) == 0 {
		return out, nil
	}

	resetAfter := esc.ResetAfter()
	idle := resetAfter
	if idle <= 0 {
		idle = max(t.defaultIdle, esc.Window())
	}

	t.states.Compute(key(ruleID, offenderID), func(old *state, loaded bool) (*state, bool) {
		s := &state{idle: idle, firedAtCnt: map[int]int{}}
		if loaded {
			if resetAfter > 0 && at.Sub(old.last) >= resetAfter {
				out.Reset = true
			} else {
				cutoff := at.Add(-esc.Window())
				for _, h := range old.hits {
					if h.After(cutoff) {
						s.hits = append(s.hits, h)
					}
				}
				for i, c := range old.firedAtCnt {
					s.firedAtCnt[i] = c
				}
				s.last = old.last
			}
		}

		s.hits = append(s.hits, at)
		if at.After(s.last) {
			s.last = at
		}
		out.Count = len(s.hits)

		for i, step := range esc.Steps {
			n := countSince(s.hits, at.Add(-time.Duration(step.WindowSeconds)*time.Second))
			if n < step.Threshold {
				// a later burst reaching the threshold again is a new occurrence
				delete(s.firedAtCnt, i)
				continue
			}
			if s.firedAtCnt[i] != n {
				s.firedAtCnt[i] = n
				out.Fired = append(out.Fired, i)
			}
		}
		return s, false
	})

	return out, nil
}

// Count returns the retained violations of an offender, for diagnostics.
func (t *Tracker) Count(ruleID string, offenderID int64) int {
	s, ok := t.states.Load(key(ruleID, offenderID))
	if !ok {
		return 0
	}
	return len(s.hits)
}

// Sweep evicts histories idle for longer than their rule's reset interval
// and returns how many were dropped.
func (t *Tracker) Sweep(now time.Time) int {
	dropped := 0
	t.states.Range(func(k string, _ *state) bool {
		t.states.Compute(k, func(old *state, loaded bool) (*state, bool) {
			drop := !loaded || now.Sub(old.last) > old.idle
			if drop && loaded {
				dropped++
			}
			return old, drop
		})
		return true
	})
	return dropped
}

func countSince(hits []time.Time, cutoff time.Time) int {
	n := 0
	for _, h := range hits {
		if h.After(cutoff) {
			n++
		}
	}
	return n
}
