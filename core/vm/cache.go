package vm

import (
	"github.com/VictoriaMetrics/fastcache"

	"github.com/ethforge/corevm/crypto"
	"github.com/ethforge/corevm/types"
)

// analysisCache holds jumpdest bitmaps keyed by code hash, so hot contracts
// don't redo the same analysis on every invocation, and a precompile result
// store keyed by address/input digest. runPrecompile does not read or fill
// the precompile store.
type analysisCache struct {
	jumpdests   *fastcache.Cache
	precompiles *fastcache.Cache
}

const (
	defaultAnalysisCacheBytes   = 16 * 1024 * 1024
	defaultPrecompileCacheBytes = 8 * 1024 * 1024
)

var globalAnalysisCache = newAnalysisCache(defaultAnalysisCacheBytes, defaultPrecompileCacheBytes)

func newAnalysisCache(jumpdestBytes, precompileBytes int) *analysisCache {
	return &analysisCache{
		jumpdests:   fastcache.New(jumpdestBytes),
		precompiles: fastcache.New(precompileBytes),
	}
}

func (c *analysisCache) getBitmap(codeHash types.Hash) (bitvec, bool) {
	v, ok := c.jumpdests.HasGet(nil, codeHash[:])
	if !ok {
		return nil, false
	}
	return bitvec(v), true
}

func (c *analysisCache) setBitmap(codeHash types.Hash, bits bitvec) {
	c.jumpdests.Set(codeHash[:], bits)
}

// precompileCacheKey digests a precompile call site (its address plus its
// input) down to a fixed-size fastcache key. The store holds only outputs,
// not errors; nothing in this package calls getPrecompileResult or
// setPrecompileResult.
func precompileCacheKey(addr types.Address, input []byte) []byte {
	return crypto.Keccak256(addr[:], input)
}

func (c *analysisCache) getPrecompileResult(addr types.Address, input []byte) ([]byte, bool) {
	v, ok := c.precompiles.HasGet(nil, precompileCacheKey(addr, input))
	if !ok {
		return nil, false
	}
	return v, true
}

func (c *analysisCache) setPrecompileResult(addr types.Address, input, output []byte) {
	c.precompiles.Set(precompileCacheKey(addr, input), output)
}
