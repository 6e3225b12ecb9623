package realtime

import (
	"sort"
	"sync"
	"time"
)

// Store holds the ephemeral per-page counters behind the live analytics
// view: TTL'd integer counters plus score-ordered member sets, the same
// shape a Redis INCR/EXPIRE/ZADD/ZRANGE deployment would provide. It is
// explicitly not the source of truth - the page_views log is - and it may
// undercount after a process restart. Updates and reads are O(1)-ish and
// commutative, so concurrent tracking for the same page needs no caller
// locking.
type Store struct {
	mu       sync.RWMutex
	counters map[string]*counter
	sets     map[string]*memberSet
	nowFn    func() time.Time
}

type counter struct {
	value     int64
	expiresAt time.Time
}

type memberSet struct {
	members   map[string]int64 // member -> score
	expiresAt time.Time
}

// MemberScore is one entry of a set read, ordered by ascending score.
type MemberScore struct {
	Member string
	Score  int64
}

// NewStore creates the store and starts a janitor that sweeps expired keys
// once a minute.
func NewStore() *Store {
	s := &Store{
		counters: make(map[string]*counter),
		sets:     make(map[string]*memberSet),
		nowFn:    time.Now,
	}

	go func() {
		for {
			time.Sleep(time.Minute)
			s.DeleteExpired()
		}
	}()

	return s
}

// Incr atomically increments the counter under key and returns the new
// value. The TTL is fixed at creation: the counter lives for ttl from its
// first increment and then resets, it is a coarse window rather than a
// sliding one.
func (s *Store) Incr(key string, ttl time.Duration) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		c = &counter{expiresAt: now.Add(ttl)}
		s.counters[key] = c
	}

	c.value++
	return c.value
}

// GetCounter returns the current counter value, 0 when absent or expired.
func (s *Store) GetCounter(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.counters[key]
	if !ok || s.nowFn().After(c.expiresAt) {
		return 0
	}

	return c.value
}

// ZAdd inserts or rescores member in the set under key and refreshes the
// set's TTL, so the whole set expires only after ttl of inactivity.
func (s *Store) ZAdd(key, member string, score int64, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	set, ok := s.sets[key]
	if !ok || now.After(set.expiresAt) {
		set = &memberSet{members: make(map[string]int64)}
		s.sets[key] = set
	}

	set.members[member] = score
	set.expiresAt = now.Add(ttl)
}

// ZCount returns the number of members in a live set, 0 when the set is
// absent or expired.
func (s *Store) ZCount(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[key]
	if !ok || s.nowFn().After(set.expiresAt) {
		return 0
	}

	return int64(len(set.members))
}

// ZRangeWithScores returns all members of a live set ordered by ascending
// score, ties broken by member for a stable output.
func (s *Store) ZRangeWithScores(key string) []MemberScore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[key]
	if !ok || s.nowFn().After(set.expiresAt) {
		return nil
	}

	out := make([]MemberScore, 0, len(set.members))
	for m, score := range set.members {
		out = append(out, MemberScore{Member: m, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})

	return out
}

// DeleteExpired removes every expired counter and set.
func (s *Store) DeleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	for k, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, k)
		}
	}
	for k, set := range s.sets {
		if now.After(set.expiresAt) {
			delete(s.sets, k)
		}
	}
}
