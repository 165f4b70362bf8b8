package handcrafted

import "github.com/jwebster45206/lotus-events/pkg/event"

// Key addresses the index by life stage and tier.
type Key struct {
	LifeStage int
	Tier      int
}

// Bucket holds positions into the handcrafted event list.
type Bucket struct {
	TierSpecific []int
	Generic      []int
}

// Index maps (life stage, tier) to the handcrafted events available there.
// It is built once after the event list loads and is read-only afterwards.
type Index struct {
	buckets map[Key]*Bucket
}

// BuildIndex files every event under each tier of its [MinTier, MaxTier]
// range at its life stage. Events with an inverted range are not indexed.
func BuildIndex(events []event.EventData) *Index {
	ix := &Index{buckets: make(map[Key]*Bucket)}
	for i, e := range events {
		for tier := e.MinTier; tier <= e.MaxTier; tier++ {
			key := Key{LifeStage: e.LifeStage, Tier: tier}
			b, ok := ix.buckets[key]
			if !ok {
				b = &Bucket{}
				ix.buckets[key] = b
			}
			if e.IsGeneric {
				b.Generic = append(b.Generic, i)
			} else {
				b.TierSpecific = append(b.TierSpecific, i)
			}
		}
	}
	return ix
}

// Lookup returns the bucket for a life stage and tier. Missing keys yield an empty bucket.
func (ix *Index) Lookup(lifeStage, tier int) Bucket {
	if ix == nil {
		return Bucket{}
	}
	if b, ok := ix.buckets[Key{LifeStage: lifeStage, Tier: tier}]; ok {
		return *b
	}
	return Bucket{}
}

// Len returns the number of populated keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.buckets)
}
