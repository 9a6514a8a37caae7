package issues

import (
	"testing"

	"github.com/pagelens/pagelens-observer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func res(id string, start, end float64) model.Resource {
	return model.Resource{
		RawSpan: model.RawSpan{
			Id:        id,
			TraceId:   "trace-1",
			Name:      id,
			Origin:    model.OriginServer,
			StartTime: start,
			EndTime:   end,
			Duration:  end - start,
			Status:    model.StatusOk,
		},
		Type: model.ResourceFetch,
	}
}

func resWithInitiator(id string, start, end float64, initiator string) model.Resource {
	r := res(id, start, end)
	r.Initiator = initiator
	return r
}

func TestDetectWaterfallsTwoSequentialResources(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 100),
		res("b", 105, 205),
	}

	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	require.Len(t, chains, 1)
	assert.Equal(t, float64(100), chains[0].WastedTime)
	assert.Equal(t, float64(200), chains[0].TotalDuration)
	assert.Len(t, chains[0].Resources, 2)
}

func TestDetectWaterfallsOverlapClosesChain(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 100),
		res("b", 50, 150),
	}

	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	assert.Empty(t, chains)
}

func TestDetectWaterfallsLargeGapClosesChain(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 100),
		res("b", 250, 350),
	}

	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	assert.Empty(t, chains)
}

func TestDetectWaterfallsSmallOverlapWithinToleranceExtendsChain(t *testing.T) {
	// b starts 3ms before a ends, inside the 5ms tolerance.
	resources := []model.Resource{
		res("a", 0, 100),
		res("b", 97, 200),
	}

	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	require.Len(t, chains, 1)
	assert.Equal(t, float64(100), chains[0].WastedTime)
}

func TestDetectWaterfallsBelowWastedThresholdNotReported(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 40),
		res("b", 45, 85),
	}

	// Wasted = 80 - 40 = 40 < 50.
	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	assert.Empty(t, chains)
}

func TestDetectWaterfallsWastedTimeBounds(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 80),
		res("b", 85, 170),
		res("c", 175, 280),
		res("d", 285, 300),
	}

	for _, chain := range DetectWaterfalls(resources, DefaultWaterfallOptions()) {
		assert.GreaterOrEqual(t, chain.WastedTime, float64(0))
		assert.LessOrEqual(t, chain.WastedTime, chain.TotalDuration)
	}
}

func TestDetectWaterfallsSortedByWastedTimeDescending(t *testing.T) {
	resources := []model.Resource{
		// Chain one: wasted 60.
		res("a", 0, 60),
		res("b", 65, 125),
		// Chain two after a big gap: wasted 200.
		res("c", 1000, 1200),
		res("d", 1205, 1405),
	}

	chains := DetectWaterfalls(resources, DefaultWaterfallOptions())
	require.Len(t, chains, 2)
	assert.Equal(t, float64(200), chains[0].WastedTime)
	assert.Equal(t, float64(60), chains[1].WastedTime)
}

func TestDetectParentChildWaterfallScenario(t *testing.T) {
	parent := res("parent", 0, 200)
	child := res("child", 205, 250)
	parent.Children = []model.Resource{child}

	pair := DetectParentChildWaterfall([]model.Resource{parent})
	require.NotNil(t, pair)
	assert.Equal(t, "parent", pair.Parent.Id)
	assert.Equal(t, "child", pair.Child.Id)
	assert.Equal(t, float64(45), pair.WastedTime)
}

func TestDetectParentChildWaterfallToleranceWindow(t *testing.T) {
	parent := res("parent", 0, 200)
	overlapping := res("overlapping", 185, 250)
	parent.Children = []model.Resource{overlapping}

	assert.Nil(t, DetectParentChildWaterfall([]model.Resource{parent}))

	blocked := res("blocked", 195, 260)
	parent.Children = []model.Resource{blocked}
	pair := DetectParentChildWaterfall([]model.Resource{parent})
	require.NotNil(t, pair)
	assert.Equal(t, "blocked", pair.Child.Id)
}

func TestDetectParentChildWaterfallPicksSingleMostImpactfulPair(t *testing.T) {
	small := res("small-parent", 0, 50)
	small.Children = []model.Resource{res("small-child", 55, 80)}
	big := res("big-parent", 0, 300)
	big.Children = []model.Resource{res("big-child", 305, 500)}

	pair := DetectParentChildWaterfall([]model.Resource{small, big})
	require.NotNil(t, pair)
	assert.Equal(t, "big-parent", pair.Parent.Id)
	assert.Equal(t, float64(195), pair.WastedTime)
}

func TestDetectParentChildWaterfallPrefersLongestBlockedChild(t *testing.T) {
	parent := res("parent", 0, 100)
	short := res("short", 105, 120)
	long := res("long", 110, 190)
	parent.Children = []model.Resource{short, long}

	pair := DetectParentChildWaterfall([]model.Resource{parent})
	require.NotNil(t, pair)
	assert.Equal(t, "long", pair.Child.Id)
	assert.Equal(t, float64(80), pair.WastedTime)
}

func TestDetectSequentialByInitiatorScenario(t *testing.T) {
	resources := []model.Resource{
		resWithInitiator("a", 0, 100, "list.tsx:10"),
		resWithInitiator("b", 105, 205, "list.tsx:10"),
		// Different call site breaks the grouping.
		resWithInitiator("c", 50, 90, "other.tsx:4"),
	}

	chains := DetectSequentialByInitiator(resources)
	require.Len(t, chains, 1)
	assert.Equal(t, float64(100), chains[0].WastedTime)
	assert.Equal(t, "list.tsx:10", chains[0].Resources[0].Initiator)
}

func TestDetectSequentialByInitiatorLowerWastedThreshold(t *testing.T) {
	// Wasted = 40: below the global 50 threshold, above the per-initiator 30.
	resources := []model.Resource{
		resWithInitiator("a", 0, 40, "list.tsx:10"),
		resWithInitiator("b", 45, 85, "list.tsx:10"),
	}

	assert.Empty(t, DetectWaterfalls(resources, DefaultWaterfallOptions()))
	assert.Len(t, DetectSequentialByInitiator(resources), 1)
}

func TestDetectSequentialByInitiatorIgnoresMissingInitiator(t *testing.T) {
	resources := []model.Resource{
		res("a", 0, 100),
		res("b", 105, 205),
	}

	assert.Empty(t, DetectSequentialByInitiator(resources))
}
