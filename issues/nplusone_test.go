package issues

import (
	"fmt"
	"testing"

	"github.com/pagelens/pagelens-observer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiRes(id, url string, duration float64, initiator string) model.Resource {
	r := res(id, 0, duration)
	r.Type = model.ResourceApi
	r.Url = url
	r.Initiator = initiator
	return r
}

func TestDetectNPlusOneScenario(t *testing.T) {
	resources := []model.Resource{
		apiRes("a", "https://app.test/api/users/1", 40, "list.tsx:10"),
		apiRes("b", "https://app.test/api/users/2", 40, "list.tsx:10"),
		apiRes("c", "https://app.test/api/users/3", 40, "list.tsx:10"),
	}

	patterns := DetectNPlusOne(resources, 3)
	require.Len(t, patterns, 1)
	assert.Equal(t, "https://app.test/api/users/*", patterns[0].Pattern)
	assert.Equal(t, 3, patterns[0].Count)
	assert.Equal(t, float64(120), patterns[0].TotalDuration)
	assert.Equal(t, float64(40), patterns[0].AvgDuration)
	assert.Equal(t, "list.tsx:10", patterns[0].Initiator)
}

func TestDetectNPlusOneBelowMinCount(t *testing.T) {
	resources := []model.Resource{
		apiRes("a", "https://app.test/api/users/1", 40, ""),
		apiRes("b", "https://app.test/api/users/2", 40, ""),
	}

	assert.Empty(t, DetectNPlusOne(resources, 3))
	assert.Len(t, DetectNPlusOne(resources, 2), 1)
}

func TestDetectNPlusOneNormalizesIdentifierSegments(t *testing.T) {
	resources := []model.Resource{
		apiRes("a", "https://app.test/api/orders/550e8400-e29b-41d4-a716-446655440000", 20, ""),
		apiRes("b", "https://app.test/api/orders/507f1f77bcf86cd799439011", 20, ""),
		apiRes("c", "https://app.test/api/orders/12345", 20, ""),
	}

	patterns := DetectNPlusOne(resources, 3)
	require.Len(t, patterns, 1)
	assert.Equal(t, "https://app.test/api/orders/*", patterns[0].Pattern)
}

func TestDetectNPlusOneMixedInitiatorsDropTheInitiator(t *testing.T) {
	resources := []model.Resource{
		apiRes("a", "https://app.test/api/users/1", 40, "list.tsx:10"),
		apiRes("b", "https://app.test/api/users/2", 40, "detail.tsx:22"),
		apiRes("c", "https://app.test/api/users/3", 40, "list.tsx:10"),
	}

	patterns := DetectNPlusOne(resources, 3)
	require.Len(t, patterns, 1)
	assert.Equal(t, "", patterns[0].Initiator)
}

func TestDetectNPlusOneIgnoresNonRequestResources(t *testing.T) {
	var resources []model.Resource
	for i := 0; i < 3; i++ {
		r := apiRes(fmt.Sprintf("db-%d", i), fmt.Sprintf("https://app.test/api/users/%d", i), 40, "")
		r.Type = model.ResourceDatabase
		resources = append(resources, r)
	}
	blank := apiRes("no-url", "", 40, "")
	resources = append(resources, blank)

	assert.Empty(t, DetectNPlusOne(resources, 3))
}

func TestDetectNPlusOneSortsByTotalDurationDescending(t *testing.T) {
	var resources []model.Resource
	for i := 0; i < 3; i++ {
		resources = append(resources, apiRes(fmt.Sprintf("cheap-%d", i), fmt.Sprintf("https://app.test/api/tags/%d", i), 10, ""))
	}
	for i := 0; i < 3; i++ {
		resources = append(resources, apiRes(fmt.Sprintf("costly-%d", i), fmt.Sprintf("https://app.test/api/users/%d", i), 90, ""))
	}

	patterns := DetectNPlusOne(resources, 3)
	require.Len(t, patterns, 2)
	assert.Equal(t, "https://app.test/api/users/*", patterns[0].Pattern)
	assert.Equal(t, "https://app.test/api/tags/*", patterns[1].Pattern)
}
