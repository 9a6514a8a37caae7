package sessions

import (
	"strings"

	"github.com/pagelens/pagelens-observer/model"
)

// computeTiming reconciles the two independently-clocked timelines. Server
// spans carry wall-clock ms; browser timing values are relative to the
// browser's own navigation start. When both a server span set and a
// responseStart exist, the browser timeline is anchored at the first client
// span's start time, or the server end time when no client span exists, and
// every browser value v maps to anchor + (v - responseStart).
func computeTiming(resources []model.Resource, event *model.NavigationEvent, navType model.NavigationType) model.PageTiming {
	timing := model.PageTiming{}

	var serverEnd float64
	var firstClientStart float64
	var haveServer, haveClient bool
	for i := range resources {
		r := &resources[i]
		switch r.Origin {
		case model.OriginServer:
			if !haveServer || r.EndTime > serverEnd {
				serverEnd = r.EndTime
			}
			haveServer = true
		case model.OriginClient:
			if !haveClient || r.StartTime < firstClientStart {
				firstClientStart = r.StartTime
			}
			haveClient = true
		}
	}

	if event != nil && event.Timing.NavigationStart > 0 {
		timing.NavigationStart = event.Timing.NavigationStart
	} else if len(resources) > 0 {
		minStart := resources[0].StartTime
		for i := range resources {
			if resources[i].StartTime < minStart {
				minStart = resources[i].StartTime
			}
		}
		timing.NavigationStart = minStart
	}

	if event != nil {
		browser := event.Timing
		if haveServer && browser.ResponseStart != nil {
			anchor := serverEnd
			if haveClient {
				anchor = firstClientStart
			}
			base := *browser.ResponseStart
			mapped := func(v *float64) *float64 {
				if v == nil {
					return nil
				}
				offset := anchor + (*v - base) - timing.NavigationStart
				return &offset
			}
			timing.ResponseStart = mapped(browser.ResponseStart)
			timing.DomContentLoaded = mapped(browser.DomContentLoaded)
			timing.Load = mapped(browser.Load)
			timing.Fcp = mapped(browser.Fcp)
			timing.Lcp = mapped(browser.Lcp)
		} else {
			timing.ResponseStart = copyFloat(browser.ResponseStart)
			timing.DomContentLoaded = copyFloat(browser.DomContentLoaded)
			timing.Load = copyFloat(browser.Load)
			timing.Fcp = copyFloat(browser.Fcp)
			timing.Lcp = copyFloat(browser.Lcp)
		}
	}

	// No true browser LCP exists for soft navigations; the latest RSC end
	// approximates the largest contentful update instead.
	if navType == model.NavigationNavigate || navType == model.NavigationBackForward {
		var latest float64
		var found bool
		for i := range resources {
			r := &resources[i]
			if r.Type == model.ResourceRsc || strings.Contains(r.Url, "_rsc") {
				if !found || r.EndTime > latest {
					latest = r.EndTime
				}
				found = true
			}
		}
		if found {
			spaLcp := latest - timing.NavigationStart
			timing.SpaLcp = &spaLcp
		}
	}

	return timing
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
