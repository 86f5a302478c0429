// Package store implements the shared keyspace: two maps (values and
// expiries) behind one mutex, plus a background Sampler that actively
// evicts expired keys rather than relying on lazy expiry alone.
package store

import (
	"strconv"
	"sync"
	"time"

	"github.com/SaadKaleem/redust/internal/rerr"
)

// Store is the shared, mutex-guarded keyspace. The zero value is not
// usable; construct with New.
type Store struct {
	mu       sync.Mutex
	data     map[string]Value
	expiries map[string]time.Time
}

func New() *Store {
	return &Store{
		data:     make(map[string]Value),
		expiries: make(map[string]time.Time),
	}
}

// isExpired reports whether key has an expiry that has passed as of now.
// Caller must hold mu.
func (s *Store) isExpired(key string, now time.Time) bool {
	exp, ok := s.expiries[key]
	return ok && !now.Before(exp)
}

// expireIfNeeded deletes key from both maps if its expiry has passed.
// Caller must hold mu. Returns true only if this call removed the key as
// expired.
func (s *Store) expireIfNeeded(key string, now time.Time) bool {
	if s.isExpired(key, now) {
		delete(s.data, key)
		delete(s.expiries, key)
		return true
	}
	return false
}

// SetOptions carries SET's optional modifiers. A nil TTL means no expiry
// is applied, clearing any expiry the key previously had (K3).
type SetOptions struct {
	NX  bool
	XX  bool
	TTL *time.Duration
}

// Set stores val under key, subject to NX/XX conditions, and returns
// whatever was previously stored (existed reports whether a live prior
// value was present before this call; a prior value whose expiry had
// passed is removed first and reported as absent).
//
// NX fails (rerr.ConditionNotMet) if the key currently exists; XX fails if
// it does not. Both present is a parse-time error (internal/command), not
// checked here.
func (s *Store) Set(key string, val Value, opts SetOptions) (prev Value, existed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expireIfNeeded(key, now)

	prev, existed = s.data[key]

	if opts.NX && existed {
		return Value{}, false, rerr.Condition("NX condition not met")
	}
	if opts.XX && !existed {
		return Value{}, false, rerr.Condition("XX condition not met")
	}

	s.data[key] = val
	delete(s.expiries, key)
	if opts.TTL != nil {
		s.expiries[key] = now.Add(*opts.TTL)
	}

	return prev, existed, nil
}

// Get returns the value stored at key and whether it was present (and not
// expired).
func (s *Store) Get(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireIfNeeded(key, time.Now())
	v, ok := s.data[key]
	return v, ok
}

// Exists counts how many of keys are currently present in data. Unlike
// Get, this deliberately does NOT perform lazy expiry (spec open question:
// the reference leaves a logically-expired-but-not-yet-sampled key
// counted as present) — it relies entirely on the Sampler to reap expired
// keys in the background.
func (s *Store) Exists(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			count++
		}
	}
	return count
}

// Del removes keys and returns how many were actually present.
func (s *Store) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for _, k := range keys {
		s.expireIfNeeded(k, now)
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			delete(s.expiries, k)
			count++
		}
	}
	return count
}

// Incr adds delta to the integer stored at key (treating a missing key as
// 0) and returns the new value. It fails if the stored value isn't a
// string, or if the string isn't a base-10 i64.
func (s *Store) Incr(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expireIfNeeded(key, now)

	cur, ok := s.data[key]
	var n int64
	if ok {
		if cur.Kind != KindString {
			return 0, rerr.Condition("value type is not string")
		}
		parsed, err := strconv.ParseInt(cur.Str, 10, 64)
		if err != nil {
			return 0, rerr.Condition("ERR value is not an integer or out of range")
		}
		n = parsed
	}

	n += delta
	s.data[key] = StringValue(strconv.FormatInt(n, 10))
	return n, nil
}

// pushSide selects which end of the list LPush/RPush operate on.
type pushSide int

const (
	pushLeft pushSide = iota
	pushRight
)

func (s *Store) push(key string, side pushSide, values []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expireIfNeeded(key, now)

	cur, ok := s.data[key]
	var list []string
	if ok {
		if cur.Kind != KindList {
			return 0, rerr.WrongType("WRONGTYPE Operation against a key holding the wrong kind of value")
		}
		list = cur.List
	}

	if side == pushLeft {
		for _, v := range values {
			list = append([]string{v}, list...)
		}
	} else {
		list = append(list, values...)
	}

	s.data[key] = ListValue(list)
	return int64(len(list)), nil
}

func (s *Store) LPush(key string, values ...string) (int64, error) {
	return s.push(key, pushLeft, values)
}

func (s *Store) RPush(key string, values ...string) (int64, error) {
	return s.push(key, pushRight, values)
}

// LRange returns list[start:stop] (inclusive) with Redis-style negative
// index normalization (-1 is the last element). Out-of-range bounds clamp
// rather than error; a missing key behaves as an empty list.
func (s *Store) LRange(key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.expireIfNeeded(key, now)

	cur, ok := s.data[key]
	if !ok {
		return []string{}, nil
	}
	if cur.Kind != KindList {
		return nil, rerr.WrongType("WRONGTYPE Operation against a key holding the wrong kind of value")
	}

	n := int64(len(cur.List))
	start = normalizeIndex(start, n)
	stop = normalizeIndex(stop, n)

	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, cur.List[start:stop+1])
	return out, nil
}

// normalizeIndex converts a possibly-negative Redis-style index (-1 = last
// element) into a plain offset from the start of a length-n sequence.
func normalizeIndex(idx, n int64) int64 {
	if idx < 0 {
		idx += n
	}
	return idx
}
