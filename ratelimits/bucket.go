package ratelimits

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// How many keys a bucket contains when created, also the maximum
	BUCKET_INITIAL_FILL = 8

	// How often new keys drip into the buckets
	DROP_INTERVAL = 10 * time.Second

	// How many keys may drop at a time
	DROP_SIZE = 1
)

// ErrNoKeys is returned by Drain when a bucket is empty
var ErrNoKeys = errors.New("no keys left")

// BucketContainer rate limits automatic responses per user
type BucketContainer struct {
	sync.Mutex

	// Maps discord ids to key-counts
	buckets map[string]int8
}

func NewBucketContainer() *BucketContainer {
	return &BucketContainer{buckets: make(map[string]int8)}
}

// Run refills buckets every DROP_INTERVAL until ctx is done
func (b *BucketContainer) Run(ctx context.Context) {
	ticker := time.NewTicker(DROP_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Refill()
		}
	}
}

// Refill drops keys into every bucket, buckets back at full are forgotten
func (b *BucketContainer) Refill() {
	b.Lock()
	defer b.Unlock()

	for user, keys := range b.buckets {
		if keys+DROP_SIZE >= BUCKET_INITIAL_FILL {
			delete(b.buckets, user)
			continue
		}
		b.buckets[user] = keys + DROP_SIZE
	}
}

// Drains amount from user if they have enough keys left
func (b *BucketContainer) Drain(amount int8, user string) error {
	b.Lock()
	defer b.Unlock()

	keys, ok := b.buckets[user]
	if !ok {
		keys = BUCKET_INITIAL_FILL
	}
	if amount > keys {
		return ErrNoKeys
	}

	b.buckets[user] = keys - amount
	return nil
}

// Get returns the keys user has left
func (b *BucketContainer) Get(user string) int8 {
	b.Lock()
	defer b.Unlock()

	keys, ok := b.buckets[user]
	if !ok {
		return BUCKET_INITIAL_FILL
	}
	return keys
}
