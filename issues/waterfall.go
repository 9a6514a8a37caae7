package issues

import (
	"sort"

	"github.com/pagelens/pagelens-observer/model"
)

// WaterfallOptions carries the contractual thresholds of the sequential
// chain walk. The defaults are part of the detector contract.
type WaterfallOptions struct {
	MinGapMs       float64
	MaxGapMs       float64
	MinChainLength int
	MinWastedMs    float64
}

func DefaultWaterfallOptions() WaterfallOptions {
	return WaterfallOptions{
		MinGapMs:       5,
		MaxGapMs:       100,
		MinChainLength: 2,
		MinWastedMs:    50,
	}
}

// DetectWaterfalls walks the resources in start order, extending the
// current chain while each next resource starts within
// [-MinGapMs, +MaxGapMs] of the previous one's end. An overlap
// (start < prevEnd - MinGapMs) or a larger gap closes the chain. A closed
// chain is reported when it has at least MinChainLength resources and its
// wasted time, sum(durations) - max(duration), is at least MinWastedMs.
// Chains come back sorted by wasted time descending.
func DetectWaterfalls(resources []model.Resource, opts WaterfallOptions) []model.WaterfallChain {
	if len(resources) == 0 {
		return nil
	}
	sorted := make([]model.Resource, len(resources))
	copy(sorted, resources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var chains []model.WaterfallChain
	current := []model.Resource{sorted[0]}

	closeChain := func() {
		if len(current) < opts.MinChainLength {
			return
		}
		chain := buildChain(current)
		if chain.WastedTime >= opts.MinWastedMs {
			chains = append(chains, chain)
		}
	}

	for _, next := range sorted[1:] {
		prevEnd := current[len(current)-1].EndTime
		switch {
		case next.StartTime < prevEnd-opts.MinGapMs:
			// Overlap: these two already ran in parallel.
			closeChain()
			current = []model.Resource{next}
		case next.StartTime <= prevEnd+opts.MaxGapMs:
			current = append(current, next)
		default:
			closeChain()
			current = []model.Resource{next}
		}
	}
	closeChain()

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].WastedTime > chains[j].WastedTime
	})
	return chains
}

func buildChain(resources []model.Resource) model.WaterfallChain {
	chain := model.WaterfallChain{
		Resources: append([]model.Resource(nil), resources...),
	}
	var maxDuration float64
	for i := range resources {
		chain.TotalDuration += resources[i].Duration
		if resources[i].Duration > maxDuration {
			maxDuration = resources[i].Duration
		}
	}
	// Time saved by running the chain in parallel instead of serially.
	chain.WastedTime = chain.TotalDuration - maxDuration
	return chain
}

// BlockedPair is a parent that finishes before its child starts, meaning
// the child waited for the whole parent.
type BlockedPair struct {
	Parent     model.Resource
	Child      model.Resource
	WastedTime float64
}

const parentChildToleranceMs = 10

// DetectParentChildWaterfall scans the resource tree for parents whose
// children only start once the parent is (almost) done. Only the single
// most impactful pair across the whole tree is returned.
func DetectParentChildWaterfall(roots []model.Resource) *BlockedPair {
	var best *BlockedPair
	var walk func(node model.Resource)
	walk = func(node model.Resource) {
		var blocked *model.Resource
		for i := range node.Children {
			child := &node.Children[i]
			if child.StartTime >= node.EndTime-parentChildToleranceMs {
				if blocked == nil || child.Duration > blocked.Duration {
					blocked = child
				}
			}
		}
		if blocked != nil {
			wasted := node.Duration
			if blocked.Duration < wasted {
				wasted = blocked.Duration
			}
			if best == nil || wasted > best.WastedTime {
				parent := node
				parent.Children = nil
				child := *blocked
				child.Children = nil
				best = &BlockedPair{Parent: parent, Child: child, WastedTime: wasted}
			}
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return best
}

// DetectSequentialByInitiator groups resources sharing the same initiator
// source location and runs the sequential walk within each group.
func DetectSequentialByInitiator(resources []model.Resource) []model.WaterfallChain {
	groups := map[string][]model.Resource{}
	for i := range resources {
		if resources[i].Initiator == "" {
			continue
		}
		groups[resources[i].Initiator] = append(groups[resources[i].Initiator], resources[i])
	}
	opts := DefaultWaterfallOptions()
	opts.MinWastedMs = 30
	var chains []model.WaterfallChain
	for _, group := range groups {
		chains = append(chains, DetectWaterfalls(group, opts)...)
	}
	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].WastedTime > chains[j].WastedTime
	})
	return chains
}
