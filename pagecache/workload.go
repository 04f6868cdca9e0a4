package pagecache

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// ErrInvalidWorkload is returned by NewWorkload for unusable parameters.
var ErrInvalidWorkload = errors.New("pagecache: invalid workload")

// Workload generates keys following a Zipf distribution over [0, keys).
type Workload struct {
	zipf *rand.Zipf
}

// NewWorkload returns a deterministic generator for seed. skew must be > 1;
// larger values concentrate accesses on fewer keys.
func NewWorkload(seed uint64, keys uint64, skew float64) (*Workload, error) {
	if keys == 0 {
		return nil, errors.Wrap(ErrInvalidWorkload, "keys must be > 0")
	}
	if skew <= 1 {
		return nil, errors.Wrapf(ErrInvalidWorkload, "skew %v must be > 1", skew)
	}

	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Workload{
		zipf: rand.NewZipf(r, skew, 1, keys-1),
	}, nil
}

// Next ...
func (w *Workload) Next() uint64 {
	return w.zipf.Uint64()
}

// Run feeds accesses keys from w into c and returns the cache stats.
func Run(c *Cache, w *Workload, accesses int) Stats {
	for i := 0; i < accesses; i++ {
		c.Access(w.Next())
	}
	return c.Stats()
}
