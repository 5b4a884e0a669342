package transcriber

import (
	"context"
	"sync"
	"time"
)

type SessionConfig struct {
	Interval time.Duration // delay between hypotheses; 0 replays as fast as consumed
}

type SessionResult struct {
	Hypotheses int
	Finals     int
	Tokens     int // tokens across final hypotheses
	Duration   time.Duration
}

type Session interface {
	Updates() <-chan Hypothesis
	Close() (SessionResult, error)
}

// replaySession feeds a prepared list of hypotheses to the consumer.
type replaySession struct {
	hyps      []Hypothesis
	interval  time.Duration
	updates   chan Hypothesis
	done      chan struct{}
	cancel    context.CancelFunc
	startedAt time.Time

	mu    sync.Mutex
	stats SessionResult
}

func newReplaySession(ctx context.Context, hyps []Hypothesis, interval time.Duration) *replaySession {
	ctx, cancel := context.WithCancel(ctx)
	rs := &replaySession{
		hyps:      hyps,
		interval:  interval,
		updates:   make(chan Hypothesis),
		done:      make(chan struct{}),
		cancel:    cancel,
		startedAt: time.Now(),
	}
	go rs.run(ctx)
	return rs
}

func (s *replaySession) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.updates)

	for i, h := range s.hyps {
		if i > 0 && s.interval > 0 {
			t := time.NewTimer(s.interval)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}

		select {
		case <-ctx.Done():
			return
		case s.updates <- h:
		}

		s.mu.Lock()
		s.stats.Hypotheses++
		if h.Final {
			s.stats.Finals++
			s.stats.Tokens += len(h.Tokens)
		}
		s.mu.Unlock()
	}
}

func (s *replaySession) Updates() <-chan Hypothesis {
	return s.updates
}

// Close stops the replay, waiting for the feeding goroutine to exit.
func (s *replaySession) Close() (SessionResult, error) {
	s.cancel()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.stats
	r.Duration = time.Since(s.startedAt)
	return r, nil
}
