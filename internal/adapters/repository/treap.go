package repository

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/podium/pkg/metrics"
)

// Treap-based Index implementation.
//
// Ordering: score DESC, then playerID ASC. The BST comparator treats "less"
// as "ranks earlier", so an in-order traversal walks the leaderboard from
// best to worst. Every node carries its subtree size, which makes rank
// lookups and range windows order-statistic walks: O(log n) descent plus a
// scan bounded by the requested window, never a full collect.

// maxTopK is the ceiling for TopK requests; larger values are clamped.
const maxTopK = 100

type node struct {
	id    string
	score int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore int64, aID string, bScore int64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1} //nolint:gosec // balance only, not security
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int64) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countBefore returns the number of entries ordered strictly before the key
// (score, id). The key does not need to exist in the tree; probing with an
// empty id counts exactly the entries with a strictly greater score, since
// ties on score order after the empty id.
func countBefore(n *node, score int64, id string) int {
	count := 0
	for n != nil {
		switch {
		case score == n.score && id == n.id:
			return count + nsize(n.left)
		case less(score, id, n.score, n.id):
			n = n.left
		default:
			count += nsize(n.left) + 1
			n = n.right
		}
	}
	return count
}

// collectRange appends the entries at positions [lo, hi] (0-based, in
// enumeration order) to out. base is the position of the leftmost entry of
// the current subtree.
func collectRange(n *node, lo, hi, base int, byID map[string]Record, out *[]Record) {
	if n == nil || lo > hi {
		return
	}
	pos := base + nsize(n.left)
	if lo < pos {
		collectRange(n.left, lo, hi, base, byID, out)
	}
	if pos >= lo && pos <= hi {
		if rec, ok := byID[n.id]; ok {
			*out = append(*out, rec)
		}
	}
	if hi > pos {
		collectRange(n.right, lo, hi, pos+1, byID, out)
	}
}

// TreapIndex implements Index for one leaderboard partition.
type TreapIndex struct {
	mu   sync.RWMutex
	root *node
	byID map[string]Record
}

// NewTreapIndex constructs an empty partition index.
func NewTreapIndex() *TreapIndex {
	return &TreapIndex{
		byID: make(map[string]Record),
	}
}

// UpsertBest implements Index.UpsertBest in O(log n) expected time.
func (t *TreapIndex) UpsertBest(ctx context.Context, playerID, displayName string, score int64, metadata map[string]string) (UpsertOutcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIndexUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.byID[playerID]; ok {
		prev := old.Score
		if score <= prev {
			return UpsertOutcome{Accepted: false, Previous: &prev}, nil
		}
		t.root = deleteNode(t.root, playerID, prev)
		t.byID[playerID] = Record{
			PlayerID:    playerID,
			DisplayName: displayName,
			Score:       score,
			UpdatedAt:   time.Now(),
			Metadata:    copyMetadata(metadata),
		}
		t.root = insert(t.root, playerID, score)
		return UpsertOutcome{Accepted: true, Previous: &prev}, nil
	}

	t.byID[playerID] = Record{
		PlayerID:    playerID,
		DisplayName: displayName,
		Score:       score,
		UpdatedAt:   time.Now(),
		Metadata:    copyMetadata(metadata),
	}
	t.root = insert(t.root, playerID, score)
	return UpsertOutcome{Accepted: true, Created: true}, nil
}

// Get implements Index.Get.
func (t *TreapIndex) Get(ctx context.Context, playerID string) (Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// TopK implements Index.TopK.
func (t *TreapIndex) TopK(ctx context.Context, k int) ([]Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIndexQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if k < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if k > maxTopK {
		k = maxTopK
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Record, 0, k)
	collectRange(t.root, 0, k-1, 0, t.byID, &out)
	return out, nil
}

// CountStrictlyGreater implements Index.CountStrictlyGreater in O(log n).
func (t *TreapIndex) CountStrictlyGreater(ctx context.Context, score int64) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return countBefore(t.root, score, "")
}

// Count implements Index.Count.
func (t *TreapIndex) Count(ctx context.Context) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// WindowAround implements Index.WindowAround. The target's position is found
// by an order-statistic descent, then the window is a bounded range scan.
func (t *TreapIndex) WindowAround(ctx context.Context, playerID string, contextSize int) ([]Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIndexQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if contextSize < 0 {
		contextSize = 0
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}

	pos := countBefore(t.root, rec.Score, playerID)
	lo := pos - contextSize
	if lo < 0 {
		lo = 0
	}
	hi := pos + contextSize
	if last := len(t.byID) - 1; hi > last {
		hi = last
	}

	out := make([]Record, 0, hi-lo+1)
	collectRange(t.root, lo, hi, 0, t.byID, &out)
	return out, nil
}

func copyMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	cp := make(map[string]string, len(metadata))
	for k, v := range metadata {
		cp[k] = v
	}
	return cp
}
