// Package service provides the ranking engine consumed by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	subqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/percentile"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Service orchestrates score submission and ranking queries across all
// leaderboard partitions.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.Manager
	deduper dedupe.Deduper
	queue   subqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// now resolves the current time for weekly time-frame defaulting.
	now func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of submission workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the async submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Used by tests to pin the weekly
// time-frame default.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ranking service...")

	s.store = repository.NewManager(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = subqueue.NewInMemoryQueue(
		subqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if q, ok := s.queue.(*subqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// resolveKey canonicalizes the partition key for a game and time frame.
func (s *Service) resolveKey(gameID, timeFrame string) (model.LeaderboardKey, error) {
	return model.NewLeaderboardKey(gameID, timeFrame, s.now())
}

// SubmitScore applies one submission under the max-score rule. The index
// performs the conditional update atomically, so racing submissions for the
// same (partition, player) pair always resolve to the maximum.
func (s *Service) SubmitScore(ctx context.Context, sub model.Submission) (types.SubmitResult, error) {
	key, err := s.resolveKey(sub.GameID, sub.TimeFrame)
	if err != nil {
		return types.SubmitResult{}, err
	}

	metrics.RecordSubmission()

	idx := s.store.Partition(key)
	out, err := idx.UpsertBest(ctx, sub.PlayerID, sub.DisplayName, sub.Score, sub.Metadata)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "upsert_error")
		return types.SubmitResult{}, fmt.Errorf("upsert %s in %s: %w", sub.PlayerID, key, err)
	}

	// Membership only changes when the record is newly created.
	if out.Created {
		s.store.Users().RecordMembership(ctx, sub.PlayerID, key)
	}

	if out.Accepted {
		metrics.RecordSubmissionAccepted()
	} else {
		metrics.RecordSubmissionRejected()
	}

	s.logger.Debug(ctx, "submission processed",
		logger.String("player", sub.PlayerID),
		logger.String("partition", key.String()),
		logger.Int64("score", sub.Score),
		logger.Bool("accepted", out.Accepted),
	)

	return types.SubmitResult{Accepted: out.Accepted, PreviousScore: out.Previous}, nil
}

// Apply implements the worker Submitter for the async ingestion path.
func (s *Service) Apply(ctx context.Context, sub model.Submission) error {
	_, err := s.SubmitScore(ctx, sub)
	return err
}

// SeenAndRecord atomically checks and records a submission ID.
// Returns true if the ID was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen set, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// EnqueueSubmission queues a submission for asynchronous processing.
// Returns false on backpressure.
func (s *Service) EnqueueSubmission(ctx context.Context, sub model.Submission) bool {
	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// TopPlayers returns the top count players of one partition with positional
// rank and percentile attached. Rank here is the 1-based position within the
// returned page; tied scores that straddle the page boundary keep their
// positional numbering.
func (s *Service) TopPlayers(ctx context.Context, gameID, timeFrame string, count int) (types.LeaderboardPage, error) {
	key, err := s.resolveKey(gameID, timeFrame)
	if err != nil {
		return types.LeaderboardPage{}, err
	}

	page := types.LeaderboardPage{
		GameID:    key.GameID,
		TimeFrame: key.TimeFrame,
		Entries:   []types.RankedEntry{},
	}

	idx, ok := s.store.Lookup(key)
	if !ok {
		// No submissions yet for this partition.
		return page, nil
	}

	recs, err := idx.TopK(ctx, count)
	if err != nil {
		return types.LeaderboardPage{}, fmt.Errorf("top players for %s: %w", key, err)
	}
	total := idx.Count(ctx)
	page.TotalPlayers = total

	for i, rec := range recs {
		entry, err := s.rankedEntry(ctx, rec, i+1, total)
		if err != nil {
			return types.LeaderboardPage{}, err
		}
		page.Entries = append(page.Entries, entry)
	}
	return page, nil
}

// Rank returns a player's competition rank within one partition: tied scores
// share a rank, and the next distinct score skips the tied count.
func (s *Service) Rank(ctx context.Context, gameID, timeFrame, playerID string) (types.RankResult, error) {
	key, err := s.resolveKey(gameID, timeFrame)
	if err != nil {
		return types.RankResult{}, err
	}

	idx, ok := s.store.Lookup(key)
	if !ok {
		return types.RankResult{}, fmt.Errorf("partition %s: %w", key, repository.ErrNotFound)
	}

	rec, err := idx.Get(ctx, playerID)
	if err != nil {
		return types.RankResult{}, fmt.Errorf("player %s in %s: %w", playerID, key, err)
	}

	rank := idx.CountStrictlyGreater(ctx, rec.Score) + 1
	total := idx.Count(ctx)

	pct, err := percentile.FromRank(rank, total)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "invariant")
		s.logger.Error(ctx, "rank invariant violated",
			logger.String("partition", key.String()),
			logger.String("player", playerID),
			logger.Int("rank", rank),
			logger.Int("total", total),
			logger.Error(err),
		)
		return types.RankResult{}, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}

	return types.RankResult{
		GameID:       key.GameID,
		TimeFrame:    key.TimeFrame,
		PlayerID:     playerID,
		DisplayName:  rec.DisplayName,
		Score:        rec.Score,
		Rank:         rank,
		TotalPlayers: total,
		Percentile:   pct,
		Band:         percentile.Band(pct),
	}, nil
}

// ContextWindow returns up to contextSize players on either side of the
// target, with neighbor ranks offset from the target's competition rank by
// positional distance.
func (s *Service) ContextWindow(ctx context.Context, gameID, timeFrame, playerID string, contextSize int) (types.WindowResult, error) {
	target, err := s.Rank(ctx, gameID, timeFrame, playerID)
	if err != nil {
		return types.WindowResult{}, err
	}

	key := model.LeaderboardKey{GameID: target.GameID, TimeFrame: target.TimeFrame}
	idx, ok := s.store.Lookup(key)
	if !ok {
		// Rank succeeded moments ago; partitions are never dropped.
		return types.WindowResult{}, fmt.Errorf("partition %s: %w", key, ErrIndexCorrupt)
	}

	recs, err := idx.WindowAround(ctx, playerID, contextSize)
	if err != nil {
		return types.WindowResult{}, fmt.Errorf("window for %s in %s: %w", playerID, key, err)
	}

	targetIdx := -1
	for i, rec := range recs {
		if rec.PlayerID == playerID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		metrics.RecordErrorByComponent("engine", "invariant")
		return types.WindowResult{}, fmt.Errorf("target missing from own window: %w", ErrIndexCorrupt)
	}

	result := types.WindowResult{
		GameID:    target.GameID,
		TimeFrame: target.TimeFrame,
		Player: types.RankedEntry{
			Rank:        target.Rank,
			PlayerID:    target.PlayerID,
			DisplayName: target.DisplayName,
			Score:       target.Score,
			Percentile:  target.Percentile,
			Band:        target.Band,
		},
		Above: []types.RankedEntry{},
		Below: []types.RankedEntry{},
	}

	for i, rec := range recs {
		if i == targetIdx {
			continue
		}
		// Offset from the target's rank by positional distance. Tied players
		// enumerated above the target would offset to rank 0, so clamp.
		rank := target.Rank - (targetIdx - i)
		if i > targetIdx {
			rank = target.Rank + (i - targetIdx)
		}
		if rank < 1 {
			rank = 1
		}
		entry, err := s.rankedEntry(ctx, rec, rank, target.TotalPlayers)
		if err != nil {
			return types.WindowResult{}, err
		}
		if i < targetIdx {
			result.Above = append(result.Above, entry)
		} else {
			result.Below = append(result.Below, entry)
		}
	}

	return result, nil
}

// CrossLeaderboardReport computes a player's standing in every partition
// they appear in, using the membership index instead of scanning all
// partitions. Fails with NotFound when the player never submitted anywhere.
func (s *Service) CrossLeaderboardReport(ctx context.Context, playerID string, opts types.ReportOptions) (types.Report, error) {
	keys := s.store.Users().LeaderboardsFor(ctx, playerID)
	if len(keys) == 0 {
		return types.Report{}, fmt.Errorf("no memberships for player %s: %w", playerID, repository.ErrNotFound)
	}

	filterFrame := opts.TimeFrame
	if filterFrame != "" {
		canonical, err := model.CanonicalTimeFrame(filterFrame, s.now())
		if err != nil {
			return types.Report{}, err
		}
		filterFrame = canonical
	}

	entries := make([]types.ReportEntry, 0, len(keys))
	for _, key := range keys {
		if opts.GameID != "" && key.GameID != opts.GameID {
			continue
		}
		if filterFrame != "" && key.TimeFrame != filterFrame {
			continue
		}

		idx, ok := s.store.Lookup(key)
		if !ok {
			metrics.RecordErrorByComponent("engine", "invariant")
			return types.Report{}, fmt.Errorf("membership without partition %s: %w", key, ErrIndexCorrupt)
		}
		rec, err := idx.Get(ctx, playerID)
		if err != nil {
			metrics.RecordErrorByComponent("engine", "invariant")
			return types.Report{}, fmt.Errorf("membership without record in %s: %w", key, ErrIndexCorrupt)
		}

		rank := idx.CountStrictlyGreater(ctx, rec.Score) + 1
		total := idx.Count(ctx)
		pct, err := percentile.FromRank(rank, total)
		if err != nil {
			metrics.RecordErrorByComponent("engine", "invariant")
			return types.Report{}, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
		}

		entries = append(entries, types.ReportEntry{
			GameID:       key.GameID,
			TimeFrame:    key.TimeFrame,
			Score:        rec.Score,
			Rank:         rank,
			TotalPlayers: total,
			Percentile:   pct,
			Band:         percentile.Band(pct),
			UpdatedAt:    rec.UpdatedAt,
		})
	}

	if opts.BestPerGame {
		entries = bestPerGame(entries)
	}

	report := types.Report{PlayerID: playerID}
	if opts.GroupByGame {
		report.Groups = make(map[string][]types.ReportEntry)
		for _, e := range entries {
			report.Groups[e.GameID] = append(report.Groups[e.GameID], e)
		}
	} else {
		report.Entries = entries
	}
	return report, nil
}

// bestPerGame keeps the highest-score entry per game. Entries arrive sorted
// by game then time frame, so the first entry of a game wins ties.
func bestPerGame(entries []types.ReportEntry) []types.ReportEntry {
	best := make([]types.ReportEntry, 0, len(entries))
	for _, e := range entries {
		if n := len(best); n > 0 && best[n-1].GameID == e.GameID {
			if e.Score > best[n-1].Score {
				best[n-1] = e
			}
			continue
		}
		best = append(best, e)
	}
	return best
}

func (s *Service) rankedEntry(ctx context.Context, rec repository.Record, rank, total int) (types.RankedEntry, error) {
	pct, err := percentile.FromRank(rank, total)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "invariant")
		s.logger.Error(ctx, "percentile invariant violated",
			logger.String("player", rec.PlayerID),
			logger.Int("rank", rank),
			logger.Int("total", total),
			logger.Error(err),
		)
		return types.RankedEntry{}, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	return types.RankedEntry{
		Rank:        rank,
		PlayerID:    rec.PlayerID,
		DisplayName: rec.DisplayName,
		Score:       rec.Score,
		Percentile:  pct,
		Band:        percentile.Band(pct),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		partitions := s.store.PartitionCount()
		players := s.store.TotalRecords(ctx)

		stats["queueLength"] = queueLen
		stats["partitions"] = partitions
		stats["totalPlayers"] = players

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdatePartitionCount(partitions)
		metrics.UpdatePlayersTotal(players)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the idempotency cache.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
