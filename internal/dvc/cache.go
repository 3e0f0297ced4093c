package dvc

// cacheEntry is one slot of the 17-entry color LRU.
type cacheEntry struct {
	color     int
	usage     int
	blockUsed int
}

// cacheReset clears the color LRU (called on Reset, on Mode2, and when
// Process initializes the decoder).
func (d *Decoder) cacheReset() {
	d.ccActive = 0
}

// cacheLRU inserts color into the LRU if not already present, returning 1 on
// hit and 0 on miss/insert (§4.4.3). It ages every entry whose usage is
// below the inserted/found entry's previous rank, and rewrites next_1[PixFan]
// whenever the cache population changes.
func (d *Decoder) cacheLRU(color int) int {
	k := d.ccActive
	j := 0
	hit := 0

	for i := 0; i < k; i++ {
		if color == d.cache[i].color {
			j = i
			hit = 1
			break
		}
		if d.cache[i].usage == k-1 {
			j = i
		}
	}

	m := d.cache[j].usage

	if hit == 0 {
		if k < 17 {
			j = k
			m = k
			k++
			d.ccActive = k

			d.pixcode = lruPixcodeForCacheSize(d.ccActive)
			d.next1[PixFan] = d.pixcode
		}
		d.cache[j].color = color
	}

	d.cache[j].blockUsed = 1

	for i := 0; i < k; i++ {
		if d.cache[i].usage < m {
			d.cache[i].usage++
		}
	}
	d.cache[j].usage = 0

	return hit
}

// cacheFind resolves an LRU rank to a color, promoting it to rank 0. Returns
// -1 on a miss (the rank doesn't exist in the current cache population).
func (d *Decoder) cacheFind(rank int) int {
	active := d.ccActive
	for j := 0; j < active; j++ {
		if rank == d.cache[j].usage {
			color := d.cache[j].color
			for i := 0; i < active; i++ {
				if d.cache[i].usage < rank {
					d.cache[i].usage++
				}
			}
			d.cache[j].usage = 0
			d.cache[j].blockUsed = 1
			return color
		}
	}
	return -1
}

// cachePrune compacts the cache at block boundaries, dropping entries that
// weren't referenced this block and decrementing blockUsed on survivors.
func (d *Decoder) cachePrune() {
	j := d.ccActive
	i := 0
	for i < j {
		if d.cache[i].blockUsed == 0 {
			j--
			d.cache[i] = d.cache[j]
		} else {
			d.cache[i].blockUsed--
			i++
		}
	}

	d.ccActive = j
	d.pixcode = lruPixcodeForCacheSize(d.ccActive)
	d.next1[PixFan] = d.pixcode
}
