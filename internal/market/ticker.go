package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the home view's refresh period.
const DefaultInterval = 12 * time.Second

// ErrTickerRunning is returned by Start on a ticker that is already scheduled.
var ErrTickerRunning = errors.New("market: ticker already running")

// ErrInvalidInterval is returned by CheckInterval for periods the cron
// schedule cannot honour exactly.
var ErrInvalidInterval = errors.New("market: invalid tick interval")

// CheckInterval reports whether d can be scheduled as is. cron's @every
// raises anything under a second to one second and drops fractions, so only
// whole seconds are accepted.
func CheckInterval(d time.Duration) error {
	if d < time.Second {
		return fmt.Errorf("%w: %s is below 1s", ErrInvalidInterval, d)
	}
	if d%time.Second != 0 {
		return fmt.Errorf("%w: %s is not a whole number of seconds", ErrInvalidInterval, d)
	}
	return nil
}

// subscriberBuffer is the number of quote batches a subscriber may lag
// behind before batches are dropped for it.
const subscriberBuffer = 4

// Ticker advances a set of series on a fixed schedule and fans each batch of
// quotes out to subscribers.
type Ticker struct {
	interval time.Duration
	series   []*Series
	log      logrus.FieldLogger

	mu     sync.Mutex
	cron   *cron.Cron
	done   chan struct{} // closed by Stop to release the Start watcher
	subs   map[int]chan []Quote
	nextID int
}

// NewTicker creates a ticker over the given series. A non-positive interval
// uses DefaultInterval; anything else is rounded to whole seconds (at least
// one) so Interval matches the schedule that actually runs.
func NewTicker(interval time.Duration, series []*Series, log logrus.FieldLogger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval = interval.Round(time.Second); interval < time.Second {
		interval = time.Second
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Ticker{
		interval: interval,
		series:   series,
		log:      log.WithField("component", "market"),
		subs:     make(map[int]chan []Quote),
	}
}

// NewTickerFromInstruments builds one random-walk series per instrument.
func NewTickerFromInstruments(interval time.Duration, window int, insts []Instrument, log logrus.FieldLogger) *Ticker {
	series := make([]*Series, 0, len(insts))
	for _, inst := range insts {
		series = append(series, NewSeries(inst, window, nil))
	}
	return NewTicker(interval, series, log)
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start schedules ticks every interval. Ticks never overlap: a tick that
// fires while the previous one is still running is skipped. The schedule
// stops when ctx is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		return ErrTickerRunning
	}

	logger := cron.PrintfLogger(t.log)
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	spec := fmt.Sprintf("@every %s", t.interval)
	if _, err := c.AddFunc(spec, func() { t.TickAll() }); err != nil {
		return fmt.Errorf("scheduling market ticks: %w", err)
	}
	c.Start()
	t.cron = c
	done := make(chan struct{})
	t.done = done

	t.log.WithFields(logrus.Fields{
		"interval": t.interval.String(),
		"series":   len(t.series),
	}).Info("market ticker started")

	go func() {
		select {
		case <-ctx.Done():
			t.Stop()
		case <-done:
		}
	}()
	return nil
}

// Run starts the ticker and blocks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	if err := t.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	t.Stop()
	return nil
}

// Stop cancels the schedule and waits for a running tick to finish. It is
// safe to call more than once.
func (t *Ticker) Stop() {
	t.mu.Lock()
	c, done := t.cron, t.done
	t.cron, t.done = nil, nil
	t.mu.Unlock()

	if c == nil {
		return
	}
	close(done)
	<-c.Stop().Done()
	t.log.Info("market ticker stopped")
}

// TickAll advances every series once and publishes the batch.
func (t *Ticker) TickAll() []Quote {
	quotes := make([]Quote, 0, len(t.series))
	for _, s := range t.series {
		quotes = append(quotes, s.Tick())
	}
	t.publish(quotes)
	return quotes
}

// Snapshot returns the current quote of every series.
func (t *Ticker) Snapshot() []Quote {
	quotes := make([]Quote, 0, len(t.series))
	for _, s := range t.series {
		quotes = append(quotes, s.Quote())
	}
	return quotes
}

// Subscribe returns a channel that receives every quote batch and a cancel
// function that unregisters and closes it. Slow subscribers miss batches
// rather than block the ticker.
func (t *Ticker) Subscribe() (<-chan []Quote, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan []Quote, subscriberBuffer)
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Ticker) publish(quotes []Quote) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, ch := range t.subs {
		select {
		case ch <- quotes:
		default:
			t.log.WithField("subscriber", id).Debug("subscriber lagging, batch dropped")
		}
	}
}
