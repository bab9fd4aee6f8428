// Package cache implements the block-chained key/value cache (spec §3,
// §4.C): a preallocated, fixed-size block pool shared across all keys,
// where each key's bytes live in a singly-linked chain of blocks and
// freed blocks return to a FIFO free list for reuse by any key.
//
// Grounded directly on original_source/common/kv_cache.cpp's KVCache:
// same free-list/chain structure, same append-write and
// consuming/non-consuming read semantics, same "need + ReserveMargin"
// safety margin on Put. The byte arena itself follows the teacher's
// backend/mem.go pattern of one flat preallocated []byte rather than
// per-block allocations, adapted here single-threaded (the cache is
// affinitized to one coroutine scheduler, per spec §5) so the
// teacher's sharded sync.RWMutex locking is dropped rather than
// carried over unused.
package cache

import (
	"github.com/ehrlich-b/gocoro/internal/constants"
	"github.com/ehrlich-b/gocoro/internal/errcode"
	"github.com/ehrlich-b/gocoro/internal/logging"
)

// nilBlock is the chain terminator, mirroring the original's
// UINT32_MAX sentinel for "_next_block"/"_first_block" fields.
const nilBlock = ^uint32(0)

// Config tunes a Cache's capacity. Zero values fall back to the
// package defaults (spec §4.C: block_num 15000, block_size 512).
type Config struct {
	// MaxFrameNum is an advisory hint for the expected number of
	// distinct keys; unlike the original's hash-table rehash-on-Init
	// tuning, Go's builtin map needs no equivalent pre-sizing call, so
	// this field only pre-sizes the backing map via make(map, n).
	MaxFrameNum uint32
	BlockNum    uint32
	BlockSize   uint32
	Logger      *logging.Logger
}

type blockInfo struct {
	writePos  uint16
	readPos   uint16
	nextBlock uint32
}

type chainHead struct {
	firstBlock uint32
	lastBlock  uint32
}

// Cache is a block-chained key/value store over a single preallocated
// byte arena (spec §3 KVCache, §4.C).
//
// Not safe for concurrent use without external synchronization; per
// spec §5 a Cache is driven by one coroutine scheduler goroutine.
type Cache struct {
	logger *logging.Logger

	blockNum  uint32
	blockSize uint32

	freeBlockSize uint32
	freeHead      chainHead

	blocks []blockInfo
	mem    []byte

	chains map[uint64]chainHead
}

// New creates a Cache and preallocates its block arena per cfg,
// equivalent to the original's constructor-then-Init two-step.
func New(cfg Config) *Cache {
	blockNum := cfg.BlockNum
	if blockNum == 0 {
		blockNum = constants.DefaultBlockNum
	}
	blockSize := cfg.BlockSize
	if blockSize == 0 {
		blockSize = constants.DefaultBlockSize
	}
	maxFrameNum := cfg.MaxFrameNum
	if maxFrameNum == 0 {
		maxFrameNum = constants.DefaultMaxFrameNum
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	c := &Cache{
		logger:    logger,
		blockNum:  blockNum,
		blockSize: blockSize,
		blocks:    make([]blockInfo, blockNum),
		mem:       make([]byte, uint64(blockNum)*uint64(blockSize)),
		chains:    make(map[uint64]chainHead, maxFrameNum),
	}

	for idx := uint32(0); idx < blockNum; idx++ {
		c.blocks[idx] = blockInfo{nextBlock: idx + 1}
	}
	c.blocks[blockNum-1].nextBlock = nilBlock

	c.freeHead = chainHead{firstBlock: 0, lastBlock: blockNum - 1}
	c.freeBlockSize = blockNum

	return c
}

// Put appends length bytes from buff to key's chain, allocating a new
// chain (and its first block) if key is unseen. When overwrite is
// true, any existing chain for key is deleted first, matching the
// original's is_overwrite semantics.
//
// Put fails (ErrBlockNotEnough) unless the free list holds strictly
// more than needed+ReserveMargin blocks, the fixed safety margin from
// kv_cache.cpp's Put. It also rejects a zero-length buff, which would
// neither allocate a block nor mutate any chain and therefore never
// legitimately occurs in a real call.
func (c *Cache) Put(key uint64, buff []byte, overwrite bool) error {
	if len(buff) == 0 {
		return errcode.New("Put", errcode.CacheInvalidParam)
	}

	length := uint32(len(buff))
	need := length / c.blockSize
	if length%c.blockSize != 0 {
		need++
	}
	if c.freeBlockSize <= need+constants.ReserveMargin {
		return errcode.Newf("Put", errcode.CacheBlockNotEnough,
			"need %d remain %d", need, c.freeBlockSize)
	}

	if overwrite {
		_ = c.Del(key)
	}

	head, exists := c.chains[key]
	if !exists {
		blockID := c.allocBlock()
		head = chainHead{firstBlock: blockID, lastBlock: blockID}
	}

	hasWritten := uint32(0)
	lastBlock := head.lastBlock
	for hasWritten < length {
		avail := uint32(c.blockSize) - uint32(c.blocks[lastBlock].writePos)
		remain := length - hasWritten
		n := avail
		if remain < n {
			n = remain
		}

		dst := c.blockOffset(lastBlock) + uint32(c.blocks[lastBlock].writePos)
		copy(c.mem[dst:dst+n], buff[hasWritten:hasWritten+n])
		c.blocks[lastBlock].writePos += uint16(n)
		hasWritten += n

		if hasWritten < length {
			next := c.allocBlock()
			c.blocks[lastBlock].nextBlock = next
			lastBlock = next
		}
	}
	head.lastBlock = lastBlock
	c.chains[key] = head

	c.logger.Trace("cache put", "key", key, "length", length)
	return nil
}

// allocBlock pops one block off the free list and resets its cursors.
// Caller must have already verified the free list is non-empty.
func (c *Cache) allocBlock() uint32 {
	c.freeBlockSize--
	id := c.freeHead.firstBlock
	c.freeHead.firstBlock = c.blocks[id].nextBlock
	c.blocks[id] = blockInfo{nextBlock: nilBlock}
	return id
}

func (c *Cache) blockOffset(id uint32) uint32 {
	return id * c.blockSize
}

// Get reads up to len(buff) bytes from key's chain into buff, removing
// read bytes (and fully-drained blocks, which return to the free
// list) as it goes. It returns the number of bytes read, 0 if key is
// absent. A key with more data than len(buff) keeps its remainder for
// a subsequent Get, per the original's partial-read note.
func (c *Cache) Get(key uint64, buff []byte) int {
	head, ok := c.chains[key]
	if !ok || len(buff) == 0 {
		return 0
	}

	hasRead := uint32(0)
	length := uint32(len(buff))
	blockID := head.firstBlock
	for blockID != nilBlock && hasRead < length {
		remain := length - hasRead
		avail := uint32(c.blocks[blockID].writePos) - uint32(c.blocks[blockID].readPos)
		n := remain
		if avail < n {
			n = avail
		}

		src := c.blockOffset(blockID) + uint32(c.blocks[blockID].readPos)
		copy(buff[hasRead:hasRead+n], c.mem[src:src+n])
		c.blocks[blockID].readPos += uint16(n)
		hasRead += n

		if n == avail {
			c.freeBlock(blockID)
			next := c.blocks[blockID].nextBlock
			c.blocks[blockID].nextBlock = nilBlock
			blockID = next
		}
	}
	head.firstBlock = blockID

	if blockID == nilBlock {
		delete(c.chains, key)
	} else {
		c.chains[key] = head
	}
	return int(hasRead)
}

// freeBlock appends blockID to the tail of the free list and bumps
// freeBlockSize. blockID's own nextBlock is left to the caller.
func (c *Cache) freeBlock(blockID uint32) {
	c.blocks[c.freeHead.lastBlock].nextBlock = blockID
	c.freeHead.lastBlock = blockID
	c.freeBlockSize++
}

// Peek behaves like Get but does not consume: read positions and
// chain membership are left untouched.
func (c *Cache) Peek(key uint64, buff []byte) int {
	head, ok := c.chains[key]
	if !ok || len(buff) == 0 {
		return 0
	}

	hasRead := uint32(0)
	length := uint32(len(buff))
	blockID := head.firstBlock
	for blockID != nilBlock && hasRead < length {
		remain := length - hasRead
		avail := uint32(c.blocks[blockID].writePos) - uint32(c.blocks[blockID].readPos)
		n := remain
		if avail < n {
			n = avail
		}

		src := c.blockOffset(blockID) + uint32(c.blocks[blockID].readPos)
		copy(buff[hasRead:hasRead+n], c.mem[src:src+n])
		hasRead += n

		if n == avail {
			blockID = c.blocks[blockID].nextBlock
		}
	}
	return int(hasRead)
}

// GetSize returns the total unread byte count for key, 0 if absent.
func (c *Cache) GetSize(key uint64) int {
	head, ok := c.chains[key]
	if !ok {
		return 0
	}

	total := uint32(0)
	blockID := head.firstBlock
	for blockID != nilBlock {
		total += uint32(c.blocks[blockID].writePos) - uint32(c.blocks[blockID].readPos)
		blockID = c.blocks[blockID].nextBlock
	}
	return int(total)
}

// Del destroys key's entire chain, returning every block it held to
// the free list in one splice.
func (c *Cache) Del(key uint64) error {
	head, ok := c.chains[key]
	if !ok {
		return errcode.New("Del", errcode.CacheKeyUnexist)
	}

	c.blocks[c.freeHead.lastBlock].nextBlock = head.firstBlock
	c.freeHead.lastBlock = head.lastBlock
	c.blocks[c.freeHead.lastBlock].nextBlock = nilBlock

	blockID := head.firstBlock
	for blockID != nilBlock {
		blockID = c.blocks[blockID].nextBlock
		c.freeBlockSize++
	}
	delete(c.chains, key)
	return nil
}

// FreeBlocks reports the number of blocks currently on the free list,
// for diagnostics and tests.
func (c *Cache) FreeBlocks() uint32 {
	return c.freeBlockSize
}
