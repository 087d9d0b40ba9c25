package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"TickBoard/internal/domain/models"
	"TickBoard/pkg/util"
)

// tick is one CSV row of the trading-day dump: symbol, security type,
// last price, and the observation instant.
type tick struct {
	id      string
	secType string
	price   float64
	at      time.Time
}

// symbolState carries the per-symbol smoothing state across batches.
type symbolState struct {
	secType   string
	price     float64
	prevPrice float64
	emaShort  float64
	emaLong   float64
	breakout  models.Breakout
	at        time.Time
	seeded    bool
}

// Source replays a tick CSV as a stream of complete snapshots. Rows that
// share a trading time form one batch; each batch advances per-symbol
// EMA38/EMA100 smoothing and crossover classification, and Next returns
// the full table of every symbol seen so far. At end of file the replay
// wraps around.
type Source struct {
	path      string
	filter    map[string]struct{}
	shortN    int
	longN     int
	rows      []tick
	idx       int
	state     map[string]*symbolState
	stockIDs  []string
	generated int
}

// NewSource creates a replay source. symbols filters the CSV to the given
// IDs; empty means all.
func NewSource(path string, symbols []string, emaShort, emaLong int) *Source {
	var filter map[string]struct{}
	if len(symbols) > 0 {
		filter = make(map[string]struct{}, len(symbols))
		for _, s := range symbols {
			filter[s] = struct{}{}
		}
	}
	if emaShort <= 0 {
		emaShort = 38
	}
	if emaLong <= 0 {
		emaLong = 100
	}
	return &Source{
		path:   path,
		filter: filter,
		shortN: emaShort,
		longN:  emaLong,
		state:  make(map[string]*symbolState),
	}
}

// Load reads and parses the whole CSV. Expected columns:
// ID, SecType, Last, Trading time, Trading date.
func (s *Source) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return s.LoadReader(f)
}

// LoadReader parses CSV rows from r. See Load for the expected columns.
func (s *Source) LoadReader(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 5 {
			continue
		}
		id := rec[0]
		if s.filter != nil {
			if _, ok := s.filter[id]; !ok {
				continue
			}
		}
		price, err := strconv.ParseFloat(rec[2], 64)
		if err != nil || price < 0 {
			continue
		}
		at, ok := util.ParseTradingTime(rec[4], rec[3])
		if !ok {
			continue
		}
		s.rows = append(s.rows, tick{id: id, secType: rec[1], price: price, at: at})
	}

	if len(s.rows) == 0 {
		return fmt.Errorf("no usable rows in %s", s.path)
	}
	sort.SliceStable(s.rows, func(i, j int) bool { return s.rows[i].at.Before(s.rows[j].at) })
	return nil
}

// Next consumes the next same-time batch and returns the resulting
// complete snapshot. The replay wraps around at end of data.
func (s *Source) Next() *models.Snapshot {
	if len(s.rows) == 0 {
		return &models.Snapshot{Timestamp: time.Now().UTC(), Stocks: []models.StockRecord{}}
	}
	if s.idx >= len(s.rows) {
		s.idx = 0
	}

	batchTime := s.rows[s.idx].at
	for s.idx < len(s.rows) && s.rows[s.idx].at.Equal(batchTime) {
		s.advance(s.rows[s.idx])
		s.idx++
	}
	s.generated++

	return s.snapshot()
}

// advance folds one tick into the symbol's smoothing state and derives
// the crossover classification for this batch.
func (s *Source) advance(t tick) {
	st, ok := s.state[t.id]
	if !ok {
		st = &symbolState{secType: t.secType}
		s.state[t.id] = st
		s.stockIDs = append(s.stockIDs, t.id)
		sort.Strings(s.stockIDs)
	}

	prevShort, prevLong := st.emaShort, st.emaLong
	if !st.seeded {
		st.emaShort, st.emaLong = t.price, t.price
		st.seeded = true
	} else {
		st.emaShort = ema(t.price, st.emaShort, s.shortN)
		st.emaLong = ema(t.price, st.emaLong, s.longN)
	}

	st.breakout = models.BreakoutNone
	if prevShort <= prevLong && st.emaShort > st.emaLong {
		st.breakout = models.BreakoutBullish
	} else if prevShort >= prevLong && st.emaShort < st.emaLong {
		st.breakout = models.BreakoutBearish
	}

	st.prevPrice = st.price
	st.price = t.price
	st.at = t.at
}

func ema(price, prev float64, n int) float64 {
	k := 2.0 / float64(n+1)
	return price*k + prev*(1-k)
}

// snapshot renders the full table of every symbol seen so far.
func (s *Source) snapshot() *models.Snapshot {
	stocks := make([]models.StockRecord, 0, len(s.stockIDs))
	for _, id := range s.stockIDs {
		st := s.state[id]
		rec := models.StockRecord{
			StockID:      id,
			SecType:      st.secType,
			CurrentPrice: st.price,
			EMA38:        st.emaShort,
			EMA100:       st.emaLong,
			Breakout:     st.breakout,
			TradingTime:  st.at.Format(time.RFC3339),
		}
		if st.prevPrice > 0 {
			change := st.price - st.prevPrice
			pct := change / st.prevPrice * 100
			rec.PriceChange = &change
			rec.PriceChangePercent = &pct
		}
		stocks = append(stocks, rec)
	}
	return &models.Snapshot{Timestamp: time.Now().UTC(), Stocks: stocks}
}

// Generated returns how many snapshots Next has produced.
func (s *Source) Generated() int { return s.generated }
