package calibration

import "container/list"

// BlockKey identifies a corrected voxel block.
type BlockKey struct {
	GlobalIndex int
	Corrected   bool
}

// BlockCache keeps at most Cap calibrated voxel blocks and evicts the least
// recently used one when full. It is not safe for concurrent use.
type BlockCache struct {
	capacity  int
	items     map[BlockKey]*list.Element
	evictList *list.List

	hits, misses int
}

type cacheEntry struct {
	key   BlockKey
	block []complex128
}

// NewBlockCache creates a cache holding up to capacity blocks (at least one).
func NewBlockCache(capacity int) *BlockCache {
	if capacity < 1 {
		capacity = 1
	}
	return &BlockCache{
		capacity:  capacity,
		items:     make(map[BlockKey]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached block and marks it as most recently used.
func (c *BlockCache) Get(key BlockKey) ([]complex128, bool) {
	if ent, ok := c.items[key]; ok {
		c.hits++
		c.evictList.MoveToFront(ent)
		return ent.Value.(*cacheEntry).block, true
	}
	c.misses++
	return nil, false
}

// Put stores block under key, evicting the oldest block when full.
func (c *BlockCache) Put(key BlockKey, block []complex128) {
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*cacheEntry).block = block
		return
	}
	for c.evictList.Len() >= c.capacity {
		c.removeElement(c.evictList.Back())
	}
	c.items[key] = c.evictList.PushFront(&cacheEntry{key: key, block: block})
}

// Invalidate drops both senses of globalIndex.
func (c *BlockCache) Invalidate(globalIndex int) {
	for _, corrected := range []bool{false, true} {
		if ent, ok := c.items[BlockKey{GlobalIndex: globalIndex, Corrected: corrected}]; ok {
			c.removeElement(ent)
		}
	}
}

// Purge empties the cache.
func (c *BlockCache) Purge() {
	c.items = make(map[BlockKey]*list.Element)
	c.evictList.Init()
}

// Len returns the number of resident blocks.
func (c *BlockCache) Len() int { return c.evictList.Len() }

// Cap returns the capacity.
func (c *BlockCache) Cap() int { return c.capacity }

// Stats returns hit and miss counters.
func (c *BlockCache) Stats() (hits, misses int) { return c.hits, c.misses }

func (c *BlockCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*cacheEntry).key)
}
