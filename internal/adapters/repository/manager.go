package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// defaultMetricsInterval is how often the manager publishes size gauges.
const defaultMetricsInterval = 5 * time.Second

// Manager is the storage handle for all partitions and the membership index.
// It is an injected dependency with an explicit lifecycle: constructed at
// process start, closed at shutdown. Partition indexes are created lazily on
// first submission.
type Manager struct {
	mu         sync.RWMutex
	partitions map[model.LeaderboardKey]*TreapIndex
	users      *UserIndex

	metricsInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewManager constructs a partition manager and starts its background
// metrics updater.
func NewManager(ctx context.Context, opts ...Option) *Manager {
	m := &Manager{
		partitions:      make(map[model.LeaderboardKey]*TreapIndex),
		users:           NewUserIndex(),
		metricsInterval: defaultMetricsInterval,
		stopChan:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.startMetricsUpdater(ctx)

	return m
}

// Partition returns the index for key, creating it on first use.
func (m *Manager) Partition(key model.LeaderboardKey) *TreapIndex {
	m.mu.RLock()
	idx, ok := m.partitions[key]
	m.mu.RUnlock()
	if ok {
		return idx
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok = m.partitions[key]; ok {
		return idx
	}
	idx = NewTreapIndex()
	m.partitions[key] = idx
	metrics.UpdatePartitionCount(len(m.partitions))
	return idx
}

// Lookup returns the index for key without creating it.
func (m *Manager) Lookup(key model.LeaderboardKey) (*TreapIndex, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.partitions[key]
	return idx, ok
}

// Users returns the membership index.
func (m *Manager) Users() *UserIndex {
	return m.users
}

// PartitionCount returns the number of live partitions.
func (m *Manager) PartitionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.partitions)
}

// TotalRecords returns the total number of score records across partitions.
func (m *Manager) TotalRecords(ctx context.Context) int {
	m.mu.RLock()
	indexes := make([]*TreapIndex, 0, len(m.partitions))
	for _, idx := range m.partitions {
		indexes = append(indexes, idx)
	}
	m.mu.RUnlock()

	total := 0
	for _, idx := range indexes {
		total += idx.Count(ctx)
	}
	return total
}

// Close stops the background metrics updater.
func (m *Manager) Close() error {
	select {
	case <-m.stopChan:
		// already closed
	default:
		close(m.stopChan)
	}
	m.wg.Wait()
	return nil
}

func (m *Manager) startMetricsUpdater(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.metricsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-ticker.C:
				metrics.UpdatePartitionCount(m.PartitionCount())
				metrics.UpdatePlayersTotal(m.TotalRecords(ctx))
			}
		}
	}()
}
