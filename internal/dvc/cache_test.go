package dvc

import "testing"

// P-SM-4: the color cache never holds more than 17 entries, and a repeated
// color is a hit rather than a second insert.
func TestCacheLRUHitVsMiss(t *testing.T) {
	d := New(nil, nil)
	d.cacheReset()

	if hit := d.cacheLRU(0x123); hit != 0 {
		t.Fatalf("first insert of a new color should miss, got hit=%d", hit)
	}
	if d.ccActive != 1 {
		t.Fatalf("expected 1 active entry, got %d", d.ccActive)
	}
	if hit := d.cacheLRU(0x123); hit != 1 {
		t.Fatalf("re-inserting the same color should hit, got hit=%d", hit)
	}
	if d.ccActive != 1 {
		t.Fatalf("a hit must not grow the cache, got %d entries", d.ccActive)
	}
}

func TestCacheLRUCapsAt17(t *testing.T) {
	d := New(nil, nil)
	d.cacheReset()

	for i := 0; i < 40; i++ {
		d.cacheLRU(i)
	}
	if d.ccActive != 17 {
		t.Fatalf("expected cache to cap at 17 entries, got %d", d.ccActive)
	}
}

func TestCacheLRURewritesPixFanSuccessor(t *testing.T) {
	d := New(nil, nil)
	d.cacheReset()

	d.cacheLRU(1)
	if d.next1[PixFan] != Latched {
		t.Fatalf("with 1 cached color, expected next1[PixFan]=Latched, got %v", d.next1[PixFan])
	}
	d.cacheLRU(2)
	if d.next1[PixFan] != PixLru0 {
		t.Fatalf("with 2 cached colors, expected next1[PixFan]=PixLru0, got %v", d.next1[PixFan])
	}
}

// P-SM-4 (find/promote): cacheFind resolves a rank to a color and promotes
// it to rank 0; a rank beyond the active population misses.
func TestCacheFindPromotesAndMisses(t *testing.T) {
	d := New(nil, nil)
	d.cacheReset()
	d.cacheLRU(0xA)
	d.cacheLRU(0xB)
	d.cacheLRU(0xC) // rank 0 = 0xC, rank 1 = 0xB, rank 2 = 0xA

	if got := d.cacheFind(2); got != 0xA {
		t.Fatalf("cacheFind(2) = %#x, want 0xA", got)
	}
	// 0xA is now rank 0 and 0xB has moved to rank 2; a rank beyond the
	// three active entries misses.
	if got := d.cacheFind(5); got != -1 {
		t.Fatalf("cacheFind(5) with only 3 entries should miss, got %#x", got)
	}
}

// P-SM-4 (prune): entries untouched during a block are dropped at the block
// boundary; touched entries survive with blockUsed decremented.
func TestCachePruneDropsUnusedEntries(t *testing.T) {
	d := New(nil, nil)
	d.cacheReset()
	d.cacheLRU(1)
	d.cacheLRU(2)
	d.cacheLRU(3)
	d.cachePrune() // first block boundary: all three were used, all survive

	// Only color 3 is touched again before the second prune.
	d.cacheLRU(3)
	d.cachePrune()

	if d.ccActive != 1 {
		t.Fatalf("expected prune to drop entries not referenced this block, got %d active", d.ccActive)
	}
	if d.cache[0].color != 3 {
		t.Fatalf("expected surviving entry to be color 3, got %d", d.cache[0].color)
	}
}
