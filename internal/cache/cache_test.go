package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/gocoro/internal/errcode"
)

func small(t *testing.T, blockNum, blockSize uint32) *Cache {
	t.Helper()
	return New(Config{BlockNum: blockNum, BlockSize: blockSize})
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := small(t, 100, 16)

	require.NoError(t, c.Put(1, []byte("hello world"), false))
	require.Equal(t, 11, c.GetSize(1))

	buf := make([]byte, 32)
	n := c.Get(1, buf)
	require.Equal(t, 11, n)
	require.Equal(t, "hello world", string(buf[:n]))
	require.Equal(t, 0, c.GetSize(1))
}

func TestPut_SpansMultipleBlocks(t *testing.T) {
	c := small(t, 100, 4)

	payload := []byte("0123456789abcdef")
	require.NoError(t, c.Put(7, payload, false))
	require.Equal(t, len(payload), c.GetSize(7))

	buf := make([]byte, len(payload))
	n := c.Get(7, buf)
	require.Equal(t, len(payload), n)
	require.Equal(t, string(payload), string(buf))
}

func TestPut_AppendsAcrossCalls(t *testing.T) {
	c := small(t, 100, 8)

	require.NoError(t, c.Put(1, []byte("abc"), false))
	require.NoError(t, c.Put(1, []byte("def"), false))
	require.Equal(t, 6, c.GetSize(1))

	buf := make([]byte, 6)
	n := c.Get(1, buf)
	require.Equal(t, 6, n)
	require.Equal(t, "abcdef", string(buf))
}

func TestGet_PartialReadKeepsRemainder(t *testing.T) {
	c := small(t, 100, 8)
	require.NoError(t, c.Put(1, []byte("abcdefgh"), false))

	buf := make([]byte, 3)
	n := c.Get(1, buf)
	require.Equal(t, 3, n)
	require.Equal(t, "abc", string(buf))
	require.Equal(t, 5, c.GetSize(1))

	n = c.Get(1, buf)
	require.Equal(t, 3, n)
	require.Equal(t, "def", string(buf))

	n = c.Get(1, buf)
	require.Equal(t, 2, n)
	require.Equal(t, "gh", string(buf[:n]))
	require.Equal(t, 0, c.GetSize(1))
}

func TestGet_UnknownKeyReturnsZero(t *testing.T) {
	c := small(t, 100, 8)
	buf := make([]byte, 8)
	require.Equal(t, 0, c.Get(99, buf))
}

func TestPeek_DoesNotConsume(t *testing.T) {
	c := small(t, 100, 8)
	require.NoError(t, c.Put(1, []byte("payload!"), false))

	buf := make([]byte, 8)
	n := c.Peek(1, buf)
	require.Equal(t, 8, n)
	require.Equal(t, "payload!", string(buf))
	require.Equal(t, 8, c.GetSize(1))

	n = c.Peek(1, buf)
	require.Equal(t, 8, n)
	require.Equal(t, 8, c.GetSize(1))
}

func TestPut_Overwrite(t *testing.T) {
	c := small(t, 100, 8)
	require.NoError(t, c.Put(1, []byte("first"), false))
	require.NoError(t, c.Put(1, []byte("second"), true))

	require.Equal(t, 6, c.GetSize(1))
	buf := make([]byte, 6)
	n := c.Get(1, buf)
	require.Equal(t, "second", string(buf[:n]))
}

func TestDel_ReturnsAllBlocksToFreeList(t *testing.T) {
	c := small(t, 20, 4)
	before := c.FreeBlocks()

	require.NoError(t, c.Put(1, []byte("0123456789abcdef"), false))
	require.Less(t, c.FreeBlocks(), before)

	require.NoError(t, c.Del(1))
	require.Equal(t, before, c.FreeBlocks())
	require.Equal(t, 0, c.GetSize(1))
}

func TestDel_UnknownKeyErrors(t *testing.T) {
	c := small(t, 20, 4)
	err := c.Del(42)
	require.ErrorIs(t, err, errcode.New("", errcode.CacheKeyUnexist))
}

func TestPut_RejectsZeroLengthBuffer(t *testing.T) {
	c := small(t, 20, 4)
	err := c.Put(1, nil, false)
	require.ErrorIs(t, err, errcode.New("", errcode.CacheInvalidParam))
}

func TestPut_FailsWhenBelowSafetyMargin(t *testing.T) {
	// 20 blocks total; any Put needs strictly more than need+10 free,
	// so with a fresh cache there's no way to need more than 9 blocks
	// successfully — make need large enough to blow the margin outright.
	c := small(t, 20, 4)
	payload := make([]byte, 4*15) // needs 15 blocks, remain 20 <= 15+10
	err := c.Put(1, payload, false)
	require.Error(t, err)
	require.ErrorIs(t, err, errcode.New("", errcode.CacheBlockNotEnough))
}

func TestPut_SucceedsExactlyAboveMargin(t *testing.T) {
	// block_num=12, block_size=4: a write needing 1 block finds 12 free
	// before it allocates, and 12 > 1+10 (the smallest free count that
	// passes the check), so it must succeed.
	c := small(t, 12, 4)
	err := c.Put(1, []byte("ab"), false)
	require.NoError(t, err)
}

func TestGet_ReusesFreedBlocksForNewKey(t *testing.T) {
	c := small(t, 30, 4)
	require.NoError(t, c.Put(1, []byte("0123"), false))

	buf := make([]byte, 4)
	c.Get(1, buf) // drains and frees the one block

	free := c.FreeBlocks()
	require.NoError(t, c.Put(2, []byte("4567"), false))
	require.Equal(t, free-1, c.FreeBlocks())
}

func TestGetSize_MultiBlockChain(t *testing.T) {
	c := small(t, 30, 4)
	require.NoError(t, c.Put(1, []byte("0123456789"), false))
	require.Equal(t, 10, c.GetSize(1))
}
