package store

import (
	"time"
)

// sampleSize bounds how many keys-with-expiry are considered on each sweep,
// capping the work done per tick regardless of keyspace size.
const sampleSize = 20

// expiredThreshold is the fraction of a sampled batch that must have been
// expired for the sweep to immediately repeat rather than wait for the
// next tick.
const expiredThreshold = 0.25

// maxSweepIterations bounds how many times a single tick may repeat its
// sweep, so a pathological keyspace (nearly everything expired) can't spin
// a sweep forever.
const maxSweepIterations = 16

// Sampler actively evicts expired keys in the background, the same
// probabilistic algorithm Redis itself uses: rather than scanning the
// whole keyspace, each tick samples a handful of keys that carry an
// expiry and deletes the ones that have passed it. If a large share of
// the sample was expired, it resamples immediately on the assumption
// there's more to clean up.
type Sampler struct {
	store    *Store
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSampler builds a Sampler over store. It does not start running until
// Run is called.
func NewSampler(store *Store, interval time.Duration) *Sampler {
	return &Sampler{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run ticks every interval, sweeping expired keys, until Stop is called.
// Intended to be launched in its own goroutine.
func (s *Sampler) Run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Stop signals Run to exit and blocks until it has.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}

// sweep samples up to sampleSize keys-with-expiry, removes the expired
// ones, and repeats immediately (up to maxSweepIterations times) as long
// as at least expiredThreshold of the sample was expired.
func (s *Sampler) sweep() {
	for i := 0; i < maxSweepIterations; i++ {
		sampled, expired := s.sampleAndExpire()
		if sampled == 0 || float64(expired)/float64(sampled) < expiredThreshold {
			return
		}
	}
}

// sampleAndExpire picks up to sampleSize distinct keys from expiries, in
// map iteration order, and
// deletes the ones whose time has passed, reporting how many were sampled
// and how many were removed.
func (s *Sampler) sampleAndExpire() (sampled, expired int) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	now := time.Now()

	// Takes the first sampleSize keys in map iteration order. Go
	// randomizes where each iteration starts, so successive sweeps look at
	// different keys, but the sample is not a uniform random subset of
	// expiries; no explicit RNG is used.
	for key, exp := range s.store.expiries {
		if sampled >= sampleSize {
			break
		}
		sampled++
		if !now.Before(exp) {
			delete(s.store.data, key)
			delete(s.store.expiries, key)
			expired++
		}
	}

	return sampled, expired
}
