package pools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrNoLiquidityPool means no direct pool exists for the pair. Multi-hop
// routing is not attempted, so retrying will not help.
var ErrNoLiquidityPool = errors.New("no liquidity pool found for this token pair")

type pairKey [2]solana.PublicKey

func keyFor(a, b solana.PublicKey) pairKey {
	if a.String() > b.String() {
		a, b = b, a
	}
	return pairKey{a, b}
}

type snapshot struct {
	pools    []Record
	byPair   map[pairKey]int
	loadedAt time.Time
	dropped  int
}

// sharedLoadTimeout bounds a fetch shared by every waiting caller. It does
// not depend on whichever caller happened to start it.
const sharedLoadTimeout = 60 * time.Second

// Directory caches the pool list for the life of the process. Readers see a
// complete snapshot; reloads replace it atomically.
type Directory struct {
	source          Source
	logger          *logrus.Logger
	refreshInterval time.Duration

	snap  atomic.Pointer[snapshot]
	group singleflight.Group
	now   func() time.Time
}

type DirectoryConfig struct {
	Source Source
	// RefreshInterval > 0 makes EnsureLoaded reload a snapshot older than it.
	RefreshInterval time.Duration
	Logger          *logrus.Logger
}

func NewDirectory(cfg DirectoryConfig) *Directory {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Directory{
		source:          cfg.Source,
		logger:          cfg.Logger,
		refreshInterval: cfg.RefreshInterval,
		now:             time.Now,
	}
}

// EnsureLoaded fetches the pool list once. Concurrent callers share one fetch.
// With a refresh interval, a stale snapshot is reloaded; if that reload fails
// the stale snapshot stays in service.
func (d *Directory) EnsureLoaded(ctx context.Context) error {
	cur := d.snap.Load()
	if cur != nil && !d.stale(cur) {
		return nil
	}

	_, err, _ := d.group.Do("load", func() (any, error) {
		if s := d.snap.Load(); s != nil && !d.stale(s) {
			return nil, nil
		}
		return nil, d.sharedLoad(ctx)
	})
	if err != nil && cur != nil {
		d.logger.WithError(err).Warn("pool refresh failed, serving previous snapshot")
		return nil
	}
	return err
}

// Refresh reloads unconditionally and swaps the snapshot in on success.
func (d *Directory) Refresh(ctx context.Context) error {
	_, err, _ := d.group.Do("load", func() (any, error) {
		return nil, d.sharedLoad(ctx)
	})
	return err
}

func (d *Directory) sharedLoad(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
	defer cancel()
	return d.load(ctx)
}

// Invalidate drops the snapshot; the next lookup refetches.
func (d *Directory) Invalidate() {
	d.snap.Store(nil)
}

// Run refreshes on the configured interval until ctx is done.
func (d *Directory) Run(ctx context.Context) {
	if d.refreshInterval <= 0 {
		return
	}
	t := time.NewTicker(d.refreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := d.Refresh(ctx); err != nil {
				d.logger.WithError(err).Warn("scheduled pool refresh failed")
			}
		}
	}
}

// FindPool returns the direct pool for the pair, in either order.
func (d *Directory) FindPool(ctx context.Context, mintA, mintB string) (Record, error) {
	a, err := solana.PublicKeyFromBase58(mintA)
	if err != nil {
		return Record{}, fmt.Errorf("invalid mint %q: %w", mintA, err)
	}
	b, err := solana.PublicKeyFromBase58(mintB)
	if err != nil {
		return Record{}, fmt.Errorf("invalid mint %q: %w", mintB, err)
	}

	if err := d.EnsureLoaded(ctx); err != nil {
		return Record{}, err
	}

	s := d.snap.Load()
	if s == nil {
		return Record{}, fmt.Errorf("pool directory not loaded")
	}
	i, ok := s.byPair[keyFor(a, b)]
	if !ok {
		return Record{}, ErrNoLiquidityPool
	}
	return s.pools[i], nil
}

// Stats describes the current snapshot.
type Stats struct {
	Pools    int       `json:"pools"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
	Loaded   bool      `json:"loaded"`
}

func (d *Directory) Stats() Stats {
	s := d.snap.Load()
	if s == nil {
		return Stats{}
	}
	return Stats{Pools: len(s.pools), Dropped: s.dropped, LoadedAt: s.loadedAt, Loaded: true}
}

func (d *Directory) stale(s *snapshot) bool {
	return d.refreshInterval > 0 && d.now().Sub(s.loadedAt) >= d.refreshInterval
}

func (d *Directory) load(ctx context.Context) error {
	start := d.now()
	raws, err := d.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch liquidity pools: %w", err)
	}

	s := &snapshot{
		pools:  make([]Record, 0, len(raws)),
		byPair: make(map[pairKey]int, len(raws)),
	}
	for i, msg := range raws {
		var raw RawPool
		if err := json.Unmarshal(msg, &raw); err != nil {
			s.dropped++
			d.logger.WithError(err).WithField("index", i).Debug("dropping undecodable pool entry")
			continue
		}
		rec, err := Convert(raw)
		if err != nil {
			s.dropped++
			d.logger.WithError(err).WithFields(logrus.Fields{"index": i, "pool": raw.ID}).Debug("dropping pool entry")
			continue
		}
		k := keyFor(rec.BaseMint, rec.QuoteMint)
		if _, exists := s.byPair[k]; !exists {
			s.byPair[k] = len(s.pools)
		}
		s.pools = append(s.pools, rec)
	}
	s.loadedAt = d.now()
	d.snap.Store(s)

	d.logger.WithFields(logrus.Fields{
		"pools":   len(s.pools),
		"dropped": s.dropped,
		"took":    d.now().Sub(start),
	}).Info("pool directory loaded")
	return nil
}
