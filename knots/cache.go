package knots

import (
	"sync"

	"github.com/dgraph-io/ristretto"

	"github.com/dataknots/knotql/pipeline"
)

// Assembled pipelines are pure, so re-running the same query over inputs of
// the same shape can reuse the optimized pipeline. The cache is keyed by
// the rendered query and root shape.

var (
	cacheOnce sync.Once
	cache     *ristretto.Cache
)

func pipelineCache() *ristretto.Cache {
	cacheOnce.Do(func() {
		var err error
		cache, err = ristretto.NewCache(&ristretto.Config{
			NumCounters: 1 << 14,
			MaxCost:     1 << 10,
			BufferItems: 64,
		})
		if err != nil {
			panic(err)
		}
	})
	return cache
}

func cacheGet(key string) (*pipeline.Pipeline, bool) {
	value, ok := pipelineCache().Get(key)
	if !ok {
		return nil, false
	}
	return value.(*pipeline.Pipeline), true
}

func cacheSet(key string, p *pipeline.Pipeline) {
	pipelineCache().Set(key, p, 1)
}
