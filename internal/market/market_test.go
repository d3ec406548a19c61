package market

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_BoundedFIFO(t *testing.T) {
	w := NewWindow(3, 1, 2, 3, 4, 5)
	assert.Equal(t, []float64{3, 4, 5}, w.Values())

	w.Push(6)
	assert.Equal(t, []float64{4, 5, 6}, w.Values())
	assert.Equal(t, 3, w.Len())

	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, 6.0, last)
}

func TestWindow_Empty(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, DefaultWindow, w.Cap())
	_, ok := w.Last()
	assert.False(t, ok)
	assert.Empty(t, w.Values())
}

func TestWindow_ValuesIsCopy(t *testing.T) {
	w := NewWindow(2, 10, 20)
	v := w.Values()
	v[0] = 99
	assert.Equal(t, []float64{10, 20}, w.Values())
}

func TestRandomWalk_DeltaBounds(t *testing.T) {
	tests := []struct {
		name   string
		sample float64
		want   float64
	}{
		{"low edge", 0, 92.5},
		{"middle", 0.5, 100},
		{"high side", 0.99, 107.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := RandomWalk{Amplitude: 15, Floor: 0, Rand: func() float64 { return tt.sample }}
			assert.InDelta(t, tt.want, w.Next(100), 1e-9)
		})
	}
}

func TestRandomWalk_Floor(t *testing.T) {
	w := RandomWalk{Amplitude: 10, Floor: 5700, Rand: func() float64 { return 0 }}
	assert.Equal(t, 5700.0, w.Next(5701))
	assert.Equal(t, 5700.0, w.Next(5700))
}

func TestRandomWalk_RoundsToPaise(t *testing.T) {
	w := RandomWalk{Amplitude: 1, Rand: func() float64 { return 0.123456 }}
	got := w.Next(10)
	assert.InDelta(t, 9.62, got, 1e-9)
}

func TestSeries_TickChangePercent(t *testing.T) {
	inst := Instrument{Symbol: "X", Name: "Test", Price: 200, History: []float64{190, 200}, Floor: 1}
	s := NewSeries(inst, 3, FeedFunc(func(prev float64) float64 { return prev + 3 }))

	q := s.Tick()
	assert.Equal(t, 203.0, q.Price)
	assert.Equal(t, 1.5, q.ChangePercent)
	assert.Equal(t, []float64{190, 200, 203}, q.History)
	assert.Equal(t, 190.0, q.Min)
	assert.Equal(t, 203.0, q.Max)

	q = s.Tick()
	assert.Equal(t, 206.0, q.Price)
	assert.Equal(t, 1.48, q.ChangePercent)
	assert.Equal(t, []float64{200, 203, 206}, q.History)
}

func TestSeries_StartingPrice(t *testing.T) {
	gold := DefaultInstruments()[1]
	s := NewSeries(gold, DefaultWindow, nil)
	assert.Equal(t, 5975.0, s.Quote().Price)

	bare := NewSeries(Instrument{Symbol: "B", Floor: 42}, 0, nil)
	assert.Equal(t, 42.0, bare.Quote().Price)
	assert.Empty(t, bare.Quote().History)
}

func TestSeries_FeedBelowFloorIsClamped(t *testing.T) {
	s := NewSeries(Instrument{Symbol: "F", Price: 100, Floor: 90}, 3, FeedFunc(func(float64) float64 { return 10 }))
	assert.Equal(t, 90.0, s.Tick().Price)
}

func TestSeries_RandomWalkInvariants(t *testing.T) {
	for _, inst := range DefaultInstruments() {
		s := NewSeries(inst, DefaultWindow, nil)
		prev := s.Quote().Price
		for i := 0; i < 2000; i++ {
			q := s.Tick()
			require.LessOrEqual(t, len(q.History), DefaultWindow)
			require.GreaterOrEqual(t, q.Price, inst.Floor)
			require.LessOrEqual(t, q.Price-prev, inst.Amplitude/2+0.01)
			require.GreaterOrEqual(t, q.Price-prev, -inst.Amplitude/2-0.01)
			assert.Equal(t, q.Price, q.History[len(q.History)-1])
			prev = q.Price
		}
	}
}

func TestSeries_WindowNeverBelowFloor(t *testing.T) {
	cases := []struct {
		name string
		inst Instrument
	}{
		{"history below floor", Instrument{Symbol: "H", History: []float64{100, 200}, Floor: 5700, Amplitude: 10}},
		{"price below floor", Instrument{Symbol: "P", Price: 12, History: []float64{50, 60}, Floor: 40, Amplitude: 4}},
		{"mixed history", Instrument{Symbol: "M", History: []float64{99, 101, 98, 105}, Floor: 100, Amplitude: 2}},
		{"no history", Instrument{Symbol: "N", Floor: 10, Amplitude: 50}},
		{"defaults nifty", DefaultInstruments()[0]},
		{"defaults gold", DefaultInstruments()[1]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSeries(tc.inst, 5, nil)

			q := s.Quote()
			require.GreaterOrEqual(t, q.Price, tc.inst.Floor)
			for _, v := range q.History {
				require.GreaterOrEqual(t, v, tc.inst.Floor, "seeded sample %v", v)
			}

			for i := 0; i < 200; i++ {
				q = s.Tick()
				require.GreaterOrEqual(t, q.Price, tc.inst.Floor)
				for _, v := range q.History {
					require.GreaterOrEqual(t, v, tc.inst.Floor, "tick %d sample %v", i, v)
				}
				require.GreaterOrEqual(t, q.Min, tc.inst.Floor)
			}
		})
	}
}

func TestSeries_SeedClampedToFloor(t *testing.T) {
	s := NewSeries(Instrument{Symbol: "S", History: []float64{100, 200}, Floor: 5700}, 5,
		FeedFunc(func(prev float64) float64 { return prev }))

	q := s.Quote()
	assert.Equal(t, []float64{5700, 5700}, q.History)
	assert.Equal(t, 5700.0, q.Price)

	q = s.Tick()
	assert.Equal(t, []float64{5700, 5700, 5700}, q.History)
	assert.Equal(t, 0.0, q.ChangePercent)
}

func TestTicker_TickAllPublishes(t *testing.T) {
	tk := NewTickerFromInstruments(time.Second, DefaultWindow, DefaultInstruments(), nil)

	ch, cancel := tk.Subscribe()
	defer cancel()

	quotes := tk.TickAll()
	require.Len(t, quotes, 2)
	assert.Equal(t, "NIFTY", quotes[0].Symbol)
	assert.Equal(t, "GOLD", quotes[1].Symbol)

	select {
	case batch := <-ch:
		assert.Equal(t, quotes, batch)
	default:
		t.Fatal("subscriber did not receive batch")
	}

	snap := tk.Snapshot()
	assert.Equal(t, quotes[0].Price, snap[0].Price)
}

func TestTicker_SlowSubscriberDoesNotBlock(t *testing.T) {
	tk := NewTickerFromInstruments(time.Second, DefaultWindow, DefaultInstruments(), nil)
	_, cancel := tk.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*5; i++ {
			tk.TickAll()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker blocked on a slow subscriber")
	}
}

func TestTicker_CancelClosesChannel(t *testing.T) {
	tk := NewTickerFromInstruments(time.Second, DefaultWindow, DefaultInstruments(), nil)
	ch, cancel := tk.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	tk.TickAll()
}

func TestTicker_ScheduleAndStop(t *testing.T) {
	tk := NewTickerFromInstruments(time.Second, DefaultWindow, DefaultInstruments(), nil)
	ch, cancel := tk.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	require.NoError(t, tk.Start(ctx))
	assert.ErrorIs(t, tk.Start(ctx), ErrTickerRunning)

	select {
	case batch := <-ch:
		assert.Len(t, batch, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("no scheduled tick")
	}

	tk.Stop()
	tk.Stop()
	require.NoError(t, tk.Start(ctx))
	tk.Stop()
}

func TestTicker_StopReleasesWatcher(t *testing.T) {
	tk := NewTickerFromInstruments(time.Hour, DefaultWindow, DefaultInstruments(), nil)
	before := runtime.NumGoroutine()

	// Never cancelled: only Stop can end each start.
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, tk.Start(ctx))
		tk.Stop()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond, "goroutines left behind after Stop")
}

func TestCheckInterval(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 2 * time.Second, 12 * time.Second, time.Minute} {
		assert.NoError(t, CheckInterval(d), d.String())
	}
	for _, d := range []time.Duration{0, -time.Second, 500 * time.Millisecond, 1500 * time.Millisecond} {
		assert.ErrorIs(t, CheckInterval(d), ErrInvalidInterval, d.String())
	}
}

func TestTicker_IntervalMatchesSchedule(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		0:                       DefaultInterval,
		300 * time.Millisecond:  time.Second,
		1500 * time.Millisecond: 2 * time.Second,
		3 * time.Second:         3 * time.Second,
	}
	for in, want := range cases {
		tk := NewTicker(in, nil, nil)
		assert.Equal(t, want, tk.Interval(), "interval %s", in)
	}
}

func TestTicker_RunReturnsOnCancel(t *testing.T) {
	tk := NewTickerFromInstruments(time.Hour, DefaultWindow, DefaultInstruments(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		err = tk.Run(ctx)
	}()

	cancel()
	wg.Wait()
	assert.NoError(t, err)
}
