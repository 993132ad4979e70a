package hashcash

/*
	Hashcash over documents:

	A document is committed to by finding a nonce such that
	SHA-256(canonical(document) || decimal(nonce)) meets a difficulty target,
	expressed as a run of leading zero hex nibbles or leading zero bytes.

	Nonces are tried in ascending order starting from 0 and the smallest
	satisfying nonce is the solution, so the result is a pure function of the
	document and the target. Verification is a single hash.

	The search can be spread over several workers. Worker i of N walks the
	stride i, i+N, i+2N, ... and publishes its first hit into a shared minimum.
	Workers stop once their next nonce is not below that minimum, which leaves
	every smaller nonce already checked. The reported nonce is therefore the
	same for any worker count.

	An optional iteration ceiling bounds the nonce space to [0, ceiling).
*/

import (
	"context"
	"crypto/sha256"
	"math"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"powattest/pkg/pow/canonical"
)

const (
	noNonce  = math.MaxUint64
	pollMask = 1<<10 - 1 // check for cancellation every 1024 nonces
)

// Solution is the outcome of a successful search.
type Solution struct {
	Nonce    uint64
	Hash     [32]byte
	Attempts uint64 // Nonce+1, the work a sequential search would have done
	Hashed   uint64 // hashes actually computed across all workers
}

// HashCash encapsulates the document proof-of-work mechanism.
type HashCash struct {
	target        Target
	maxIterations uint64
	workers       int
}

type Option func(*HashCash)

// WithMaxIterations bounds the search to nonces below n. Zero means unbounded.
func WithMaxIterations(n uint64) Option {
	return func(pow *HashCash) {
		pow.maxIterations = n
	}
}

// WithWorkers sets the number of parallel workers. Values below 1 mean one.
func WithWorkers(n int) Option {
	return func(pow *HashCash) {
		pow.workers = n
	}
}

// NewHashCash initializes a HashCash with the given target.
func NewHashCash(target Target, opts ...Option) (*HashCash, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	pow := &HashCash{
		target:  target,
		workers: 1,
	}
	for _, opt := range opts {
		opt(pow)
	}
	if pow.workers < 1 {
		pow.workers = 1
	}

	return pow, nil
}

func (pow *HashCash) GetTarget() Target {
	return pow.target
}

func (pow *HashCash) GetMaxIterations() uint64 {
	return pow.maxIterations
}

func (pow *HashCash) GetWorkers() int {
	return pow.workers
}

// Hash computes the proof hash of doc at nonce.
func Hash(doc map[string]any, nonce uint64) ([32]byte, error) {
	data, err := canonical.Encode(doc, nonce)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Verify recomputes the proof hash for nonce and checks it against the target.
func (pow *HashCash) Verify(doc map[string]any, nonce uint64) ([32]byte, bool, error) {
	hash, err := Hash(doc, nonce)
	if err != nil {
		return hash, false, err
	}
	return hash, pow.target.IsSatisfiedBy(hash), nil
}

// Search finds the smallest nonce whose proof hash satisfies the target.
func (pow *HashCash) Search(ctx context.Context, doc map[string]any) (*Solution, error) {
	enc, err := canonical.NewEncoder(doc)
	if err != nil {
		return nil, NewSearchError("Search", err, pow.target, 0)
	}
	return pow.SearchEncoded(ctx, enc)
}

// SearchEncoded is Search for a document that has already been canonicalized.
func (pow *HashCash) SearchEncoded(ctx context.Context, enc *canonical.Encoder) (*Solution, error) {
	var (
		best   atomic.Uint64
		hashed atomic.Uint64
	)
	best.Store(noNonce)

	candidates := make([]uint64, pow.workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < pow.workers; w++ {
		w := w
		g.Go(func() error {
			nonce, err := pow.scan(gctx, enc, uint64(w), uint64(pow.workers), &best, &hashed)
			candidates[w] = nonce
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, NewSearchError("Search", err, pow.target, hashed.Load())
	}

	nonce := lo.Min(candidates)
	if nonce == noNonce {
		return nil, NewSearchError("Search", ErrTargetUnreachable, pow.target, pow.maxIterations)
	}

	return &Solution{
		Nonce:    nonce,
		Hash:     sha256.Sum256(enc.Encode(nonce)),
		Attempts: nonce + 1,
		Hashed:   hashed.Load(),
	}, nil
}

// scan walks start, start+step, ... and returns its first satisfying nonce,
// or noNonce when another worker already published a smaller one or the
// budget ran out.
func (pow *HashCash) scan(
	ctx context.Context,
	enc *canonical.Encoder,
	start, step uint64,
	best, hashed *atomic.Uint64,
) (uint64, error) {
	limit := pow.limit()
	buf := enc.Prefix()

	var n uint64
	defer func() { hashed.Add(n) }()

	for nonce := start; nonce < limit; nonce += step {
		if nonce >= best.Load() {
			return noNonce, nil
		}
		if n&pollMask == 0 {
			if err := ctx.Err(); err != nil {
				return noNonce, err
			}
		}

		buf = enc.AppendNonce(buf, nonce)
		hash := sha256.Sum256(buf)
		n++

		if pow.target.IsSatisfiedBy(hash) {
			publishMin(best, nonce)
			return nonce, nil
		}

		if limit-nonce <= step {
			break
		}
	}

	return noNonce, nil
}

func (pow *HashCash) limit() uint64 {
	if pow.maxIterations == 0 {
		return noNonce
	}
	return pow.maxIterations
}

func publishMin(best *atomic.Uint64, nonce uint64) {
	for {
		cur := best.Load()
		if nonce >= cur || best.CompareAndSwap(cur, nonce) {
			return
		}
	}
}
