package model

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// shard is a contiguous range [begin, end) of documents in a batch
type shard struct {
	begin int
	end   int
}

// shardDocuments splits n documents into min(n, w) shards of similar
// size; the first n%w shards hold one extra document.
func shardDocuments(n, w int) []shard {
	if n <= 0 {
		return nil
	}
	if w <= 0 {
		w = 1
	}
	if n < w {
		w = n
	}
	size := n / w
	extended := n % w

	shards := make([]shard, 0, w)
	begin := 0
	for i := 0; i < w; i += 1 {
		end := begin + size
		if i < extended {
			end += 1
		}
		shards = append(shards, shard{begin: begin, end: end})
		begin = end
	}
	return shards
}

func numWorkers(c *Config) int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// forEachShard runs fn on every shard concurrently and returns the first
// error. Each invocation gets the index of its shard so it can write to
// a private slot.
func forEachShard(shards []shard, fn func(i int, s shard) error) error {
	var g errgroup.Group
	for i, s := range shards {
		g.Go(func() error {
			return fn(i, s)
		})
	}
	return g.Wait()
}

// sumStats adds the per-shard accumulators together in shard order, so
// the result does not depend on goroutine scheduling. Without shards the
// statistics are a numTopics x numWords zero matrix.
func sumStats(accs []*mat.Dense, numTopics, numWords int) *mat.Dense {
	if len(accs) == 0 {
		return mat.NewDense(numTopics, numWords, nil)
	}
	sum := accs[0]
	for _, acc := range accs[1:] {
		sum.Add(sum, acc)
	}
	return sum
}
