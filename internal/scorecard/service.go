package scorecard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

const snapshotBuildTimeout = 5 * time.Second

// Snapshot is the derived dashboard state for one epoch.
type Snapshot struct {
	Epoch    Epoch                 `json:"epoch"`
	Stats    DashboardStats        `json:"stats"`
	Analysis []PerspectiveAnalysis `json:"analysis"`
}

// Priority returns the first priority perspective of the snapshot.
func (s Snapshot) Priority() (PerspectiveAnalysis, bool) {
	return FirstPriority(s.Analysis)
}

// KPIDetail backs the KPI drill-down.
type KPIDetail struct {
	Row     KPIRow         `json:"-"`
	KPI     KPI            `json:"kpi"`
	KGI     KGI            `json:"kgi"`
	Stats   AdvancedStats  `json:"stats"`
	History []HistoryPoint `json:"history"`
	Epoch   Epoch          `json:"epoch"`
}

// PerspectiveDetail backs the perspective drill-down.
type PerspectiveDetail struct {
	Analysis PerspectiveAnalysis `json:"analysis"`
	Health   float64             `json:"health"`
	KGIs     []TableRow          `json:"-"`
}

// Service derives scorecard views from the dataset for the current epoch.
type Service struct {
	dataset *Dataset
	cache   *Cache
	window  time.Duration
	now     func() time.Time
	group   singleflight.Group
}

// NewService wires the dataset with an optional cache. A non-positive window
// falls back to one day.
func NewService(dataset *Dataset, cache *Cache, window time.Duration) *Service {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Service{dataset: dataset, cache: cache, window: window, now: time.Now}
}

// WithNow overrides the clock used for epochs and timestamps.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Dataset exposes the underlying dataset.
func (s *Service) Dataset() *Dataset {
	return s.dataset
}

// Epoch returns the epoch containing the current time.
func (s *Service) Epoch() Epoch {
	return EpochAt(s.now(), s.window)
}

// Snapshot returns the stats and perspective analysis for the current epoch.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.SnapshotAt(ctx, s.Epoch())
}

// SnapshotAt returns the snapshot for epoch. Concurrent builds of the same epoch
// are collapsed and the result is cached when Redis is configured. The shared
// build is detached from the caller's cancellation and bounded by
// snapshotBuildTimeout. LastUpdated always reflects the time of the call.
func (s *Service) SnapshotAt(ctx context.Context, epoch Epoch) (Snapshot, error) {
	ch := s.group.DoChan("snapshot:"+epoch.String(), func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotBuildTimeout)
		defer cancel()
		key, err := s.cache.BuildKey(buildCtx, "scorecard", "snapshot", epoch.String())
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot key: %w", err)
		}
		var snap Snapshot
		if _, err := s.cache.FetchJSON(buildCtx, key, &snap, func(context.Context) (any, error) {
			return s.build(epoch), nil
		}); err != nil {
			return Snapshot{}, err
		}
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: %w", res.Err)
		}
		snap := res.Val.(Snapshot)
		snap.Stats.LastUpdated = s.now()
		return snap, nil
	}
}

func (s *Service) build(epoch Epoch) Snapshot {
	kgis := s.dataset.KGIs()
	return Snapshot{
		Epoch:    epoch,
		Stats:    GlobalStats(kgis, epoch, s.now()),
		Analysis: AnalyzePerspectives(kgis, epoch),
	}
}

// Analysis runs the perspective analysis for the current epoch without caching.
func (s *Service) Analysis() []PerspectiveAnalysis {
	return AnalyzePerspectives(s.dataset.KGIs(), s.Epoch())
}

// KPIDetail derives the drill-down for a KPI. The result is stable within an epoch.
func (s *Service) KPIDetail(id string) (KPIDetail, error) {
	kpi, kgi, err := s.dataset.FindKPI(id)
	if err != nil {
		return KPIDetail{}, err
	}
	epoch := s.Epoch()
	return KPIDetail{
		Row:     NewKPIRow(kpi),
		KPI:     kpi,
		KGI:     kgi,
		Stats:   CalculateAdvancedStats(kpi, SeedFor("kpi-year", kpi.ID, epoch).Rand()),
		History: MonthlyHistory(kpi, SeedFor("kpi-month", kpi.ID, epoch).Rand()),
		Epoch:   epoch,
	}, nil
}

// PerspectiveDetail derives the drill-down for a perspective from the snapshot.
func (s *Service) PerspectiveDetail(ctx context.Context, p Perspective) (PerspectiveDetail, error) {
	if !p.Valid() {
		return PerspectiveDetail{}, fmt.Errorf("%w: %d", ErrUnknownPerspective, int(p))
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return PerspectiveDetail{}, err
	}
	for _, a := range snap.Analysis {
		if a.Perspective != p {
			continue
		}
		kgis := s.dataset.ByPerspective(p)
		return PerspectiveDetail{
			Analysis: a,
			Health:   PerspectiveHealth(kgis),
			KGIs:     FilterTable(kgis, TableFilter{}),
		}, nil
	}
	return PerspectiveDetail{}, fmt.Errorf("%w: %s", ErrPerspectiveNotFound, p.Slug())
}

// PerspectiveKGIs returns copies of the KGIs owned by p.
func (s *Service) PerspectiveKGIs(p Perspective) []KGI {
	return s.dataset.ByPerspective(p)
}

// Table returns the filtered KGI→KPI table.
func (s *Service) Table(f TableFilter) []TableRow {
	return FilterTable(s.dataset.KGIs(), f)
}

// Invalidate drops every cached snapshot.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
