package rpc

import "errors"

// ErrNoHealthyRPC is returned when no endpoint answered in time.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Nodes more than this many blocks behind the best are skipped.
const staleBlockThreshold = 3

// Fastest returns the healthy, up-to-date result with the best score.
func Fastest(results []Result) (Result, error) {
	var bestBlock uint64
	for _, r := range results {
		if r.Err == nil && r.BlockNumber > bestBlock {
			bestBlock = r.BlockNumber
		}
	}

	var (
		winner    Result
		bestScore float64
		found     bool
	)
	for _, r := range results {
		if r.Err != nil || bestBlock-r.BlockNumber > staleBlockThreshold {
			continue
		}
		s := score(r, bestBlock)
		if !found || s > bestScore {
			winner, bestScore, found = r, s, true
		}
	}
	if !found {
		return Result{}, ErrNoHealthyRPC
	}
	return winner, nil
}

// score favours low latency; every block behind the head costs a point.
func score(r Result, bestBlock uint64) float64 {
	var s float64
	if ms := r.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else {
		s += 1000.0
	}
	return s - float64(bestBlock-r.BlockNumber)
}
