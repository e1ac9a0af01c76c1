// Package rpc picks a JSON-RPC endpoint for the faucet out of a chain's
// public testnet RPCs.
package rpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Result is one probed endpoint.
type Result struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Probe dials url and asks for the head block.
func Probe(ctx context.Context, url string) Result {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	r := Result{URL: url}
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		r.Err = err
		return r
	}
	defer c.Close()

	start := time.Now()
	r.BlockNumber, r.Err = c.BlockNumber(ctx)
	r.Latency = time.Since(start)
	return r
}

// Benchmark probes all urls concurrently. Results keep the order of urls.
func Benchmark(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			results[i] = Probe(ctx, u)
			return nil
		})
	}
	g.Wait() //nolint:errcheck
	return results
}

// Select probes urls and returns the best one. A single url is returned
// without probing.
func Select(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	best, err := Fastest(Benchmark(ctx, urls))
	if err != nil {
		return "", err
	}
	return best.URL, nil
}
