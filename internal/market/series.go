package market

import (
	"math"
	"sync"
	"time"

	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

// Instrument describes one simulated price series.
type Instrument struct {
	Symbol        string    `mapstructure:"symbol"         yaml:"symbol"         json:"symbol"`
	Name          string    `mapstructure:"name"           yaml:"name"           json:"name"`
	Price         float64   `mapstructure:"price"          yaml:"price"          json:"price"`
	ChangePercent float64   `mapstructure:"change_percent" yaml:"change_percent" json:"change_percent"`
	History       []float64 `mapstructure:"history"        yaml:"history"        json:"history"`
	Floor         float64   `mapstructure:"floor"          yaml:"floor"          json:"floor"`
	Amplitude     float64   `mapstructure:"amplitude"      yaml:"amplitude"      json:"amplitude"`
}

// DefaultInstruments returns the two tiles shown on the home view.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{
			Symbol:        "NIFTY",
			Name:          "NIFTY 50",
			Price:         20125.35,
			ChangePercent: 0.42,
			History:       []float64{20080, 20110, 20125, 20105, 20140, 20110, 20135},
			Floor:         19950,
			Amplitude:     15,
		},
		{
			Symbol:    "GOLD",
			Name:      "Gold (10g)",
			History:   []float64{5900, 5925, 5940, 5930, 5955, 5965, 5975},
			Floor:     5700,
			Amplitude: 10,
		},
	}
}

// Quote is a point-in-time view of a series.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	History       []float64 `json:"history"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	At            time.Time `json:"at"`
}

// Series is one instrument's window advanced by a Feed. It is safe for
// concurrent use.
type Series struct {
	inst Instrument
	feed Feed
	now  func() time.Time

	mu     sync.Mutex
	window *Window
	price  float64
	change float64
	at     time.Time
}

// NewSeries builds a series from an instrument definition. A nil feed uses a
// RandomWalk with the instrument's amplitude and floor. The starting price is
// the instrument price, else the newest history sample, else the floor.
// Seeded samples and the starting price are raised to the floor.
func NewSeries(inst Instrument, capacity int, feed Feed) *Series {
	if feed == nil {
		feed = RandomWalk{Amplitude: inst.Amplitude, Floor: inst.Floor}
	}

	seed := make([]float64, len(inst.History))
	for i, v := range inst.History {
		seed[i] = math.Max(inst.Floor, v)
	}

	s := &Series{
		inst:   inst,
		feed:   feed,
		now:    time.Now,
		window: NewWindow(capacity, seed...),
		change: inst.ChangePercent,
	}
	s.price = inst.Price
	if s.price == 0 {
		if last, ok := s.window.Last(); ok {
			s.price = last
		} else {
			s.price = inst.Floor
		}
	}
	s.price = math.Max(inst.Floor, s.price)
	s.at = s.now()
	return s
}

// Symbol returns the instrument symbol.
func (s *Series) Symbol() string { return s.inst.Symbol }

// Tick draws the next price, appends it to the window and returns the new
// quote. The change percent is measured against the previous price and
// rounded to two decimals.
func (s *Series) Tick() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.price
	next := s.feed.Next(prev)
	if next < s.inst.Floor {
		next = s.inst.Floor
	}

	s.window.Push(next)
	if prev != 0 {
		s.change = utils.RoundTo((next-prev)/prev*100, 2)
	} else {
		s.change = 0
	}
	s.price = next
	s.at = s.now()
	return s.quoteLocked()
}

// Quote returns the current quote without advancing the series.
func (s *Series) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quoteLocked()
}

func (s *Series) quoteLocked() Quote {
	history := s.window.Values()
	lo, hi := utils.TrendRange(history)
	return Quote{
		Symbol:        s.inst.Symbol,
		Name:          s.inst.Name,
		Price:         s.price,
		ChangePercent: s.change,
		History:       history,
		Min:           lo,
		Max:           hi,
		At:            s.at,
	}
}
