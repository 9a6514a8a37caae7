package issues

import (
	"testing"

	"github.com/pagelens/pagelens-observer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	issueType model.IssueType
	match     *model.IssueMatch
}

func (d *stubDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{Type: d.issueType, Title: string(d.issueType), DefaultSeverity: model.SeverityInfo}
}

func (d *stubDetector) Detect(session *model.PageSession) *model.IssueMatch { return d.match }

func (d *stubDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	return model.IssueSuggestion{Summary: "stub"}
}

type panickingDetector struct{}

func (d *panickingDetector) Definition() model.IssueDefinition {
	return model.IssueDefinition{Type: "exploding", Title: "exploding", DefaultSeverity: model.SeverityInfo}
}

func (d *panickingDetector) Detect(session *model.PageSession) *model.IssueMatch {
	panic("nil dereference, hypothetically")
}

func (d *panickingDetector) Suggest(match *model.IssueMatch) model.IssueSuggestion {
	return model.IssueSuggestion{}
}

func sessionWithResources(resources ...model.Resource) *model.PageSession {
	return &model.PageSession{Id: "session-1", Resources: resources, RootResources: resources}
}

func TestRunDetectorsSurvivesPanickingDetector(t *testing.T) {
	session := sessionWithResources()
	detectors := []Detector{
		&panickingDetector{},
		&stubDetector{issueType: "healthy", match: &model.IssueMatch{Severity: model.SeverityWarning, TimeImpactMs: 10}},
	}

	issues := RunDetectors(session, detectors)
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueType("healthy"), issues[0].Type)
}

func TestRunDetectorsSortsBySeverityThenImpact(t *testing.T) {
	session := sessionWithResources()
	detectors := []Detector{
		&stubDetector{issueType: "info-small", match: &model.IssueMatch{Severity: model.SeverityInfo, TimeImpactMs: 5}},
		&stubDetector{issueType: "warn-small", match: &model.IssueMatch{Severity: model.SeverityWarning, TimeImpactMs: 40}},
		&stubDetector{issueType: "critical", match: &model.IssueMatch{Severity: model.SeverityCritical, TimeImpactMs: 600}},
		&stubDetector{issueType: "warn-big", match: &model.IssueMatch{Severity: model.SeverityWarning, TimeImpactMs: 200}},
	}

	issues := RunDetectors(session, detectors)
	require.Len(t, issues, 4)
	assert.Equal(t, model.IssueType("critical"), issues[0].Type)
	assert.Equal(t, model.IssueType("warn-big"), issues[1].Type)
	assert.Equal(t, model.IssueType("warn-small"), issues[2].Type)
	assert.Equal(t, model.IssueType("info-small"), issues[3].Type)

	for i := 1; i < len(issues); i++ {
		prev, cur := issues[i-1], issues[i]
		assert.LessOrEqual(t, prev.Severity.Rank(), cur.Severity.Rank())
		if prev.Severity == cur.Severity {
			assert.GreaterOrEqual(t, prev.TimeImpactMs, cur.TimeImpactMs)
		}
	}
}

func TestRunDetectorsFillsDefaultSeverityAndUniqueIds(t *testing.T) {
	session := sessionWithResources()
	detectors := []Detector{
		&stubDetector{issueType: "first", match: &model.IssueMatch{TimeImpactMs: 10}},
		&stubDetector{issueType: "second", match: &model.IssueMatch{TimeImpactMs: 20}},
	}

	issues := RunDetectors(session, detectors)
	require.Len(t, issues, 2)
	assert.Equal(t, model.SeverityInfo, issues[0].Severity)
	assert.NotEmpty(t, issues[0].Id)
	assert.NotEqual(t, issues[0].Id, issues[1].Id)
	for _, issue := range issues {
		assert.Equal(t, "session-1", issue.SessionId)
	}
}

func TestWaterfallSeverityGrading(t *testing.T) {
	assert.Equal(t, model.SeverityInfo, waterfallSeverity(100))
	assert.Equal(t, model.SeverityWarning, waterfallSeverity(101))
	assert.Equal(t, model.SeverityWarning, waterfallSeverity(500))
	assert.Equal(t, model.SeverityCritical, waterfallSeverity(501))
}

func TestRunAllAggregatesAcrossSessions(t *testing.T) {
	first := sessionWithResources(
		res("a", 0, 100),
		res("b", 105, 205),
	)
	first.Id = "session-a"
	second := sessionWithResources()
	second.Id = "session-b"

	issues := RunAll([]model.PageSession{*first, *second})
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.Equal(t, "session-a", issue.SessionId)
	}
}
