package issues

import (
	"sort"

	"github.com/pagelens/pagelens-observer/model"
	"github.com/pagelens/pagelens-observer/utils"
)

const defaultNPlusOneMinCount = 3

// DetectNPlusOne normalizes each request URL by collapsing identifier
// segments and groups resources by the resulting pattern. Any group of at
// least minCount resources is a pattern; patterns come back sorted by total
// duration descending. A common initiator is recorded only when every
// member shares the exact same initiator string.
func DetectNPlusOne(resources []model.Resource, minCount int) []model.NPlusOnePattern {
	if minCount <= 0 {
		minCount = defaultNPlusOneMinCount
	}
	groups := map[string][]model.Resource{}
	var order []string
	for i := range resources {
		r := &resources[i]
		if r.Url == "" {
			continue
		}
		switch r.Type {
		case model.ResourceFetch, model.ResourceApi, model.ResourceExternal:
		default:
			continue
		}
		pattern := utils.NormalizeUrlPattern(r.Url)
		if _, seen := groups[pattern]; !seen {
			order = append(order, pattern)
		}
		groups[pattern] = append(groups[pattern], *r)
	}

	var patterns []model.NPlusOnePattern
	for _, key := range order {
		group := groups[key]
		if len(group) < minCount {
			continue
		}
		pattern := model.NPlusOnePattern{
			Pattern:   key,
			Count:     len(group),
			Resources: group,
		}
		sharedInitiator := group[0].Initiator
		for i := range group {
			pattern.TotalDuration += group[i].Duration
			if group[i].Initiator != sharedInitiator {
				sharedInitiator = ""
			}
		}
		pattern.AvgDuration = pattern.TotalDuration / float64(pattern.Count)
		pattern.Initiator = sharedInitiator
		patterns = append(patterns, pattern)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].TotalDuration > patterns[j].TotalDuration
	})
	return patterns
}
