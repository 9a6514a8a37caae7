package issues

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pagelens/pagelens-observer/metrics"
	"github.com/pagelens/pagelens-observer/model"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var engineLogTag = "IssueEngine"

// Detector inspects one built session and may report a match. Both methods
// are pure; detectors hold no state between calls.
type Detector interface {
	Definition() model.IssueDefinition
	Detect(session *model.PageSession) *model.IssueMatch
	Suggest(match *model.IssueMatch) model.IssueSuggestion
}

// DefaultDetectors returns the full registry in its canonical order.
func DefaultDetectors() []Detector {
	return []Detector{
		&SequentialWaterfallDetector{},
		&ParentChildWaterfallDetector{},
		&SequentialInitiatorDetector{},
		&NPlusOneDetector{},
		&UncachedFetchDetector{},
	}
}

// RunDetectors invokes every detector over the session. A detector that
// panics is logged and treated as no match; one faulty detector never
// aborts the batch. Results are sorted by severity, then by descending
// time impact.
func RunDetectors(session *model.PageSession, detectors []Detector) []model.DetectedIssue {
	var found []model.DetectedIssue
	for _, detector := range detectors {
		match := safeDetect(detector, session)
		if match == nil {
			continue
		}
		definition := detector.Definition()
		issue := model.DetectedIssue{
			Id:           uuid.NewString(),
			SessionId:    session.Id,
			Type:         definition.Type,
			Title:        definition.Title,
			Severity:     match.Severity,
			TimeImpactMs: match.TimeImpactMs,
			Match:        *match,
			Suggestion:   detector.Suggest(match),
		}
		if issue.Severity == "" {
			issue.Severity = definition.DefaultSeverity
		}
		metrics.TotalIssuesDetected.WithLabelValues(string(definition.Type)).Inc()
		found = append(found, issue)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Severity.Rank() != found[j].Severity.Rank() {
			return found[i].Severity.Rank() < found[j].Severity.Rank()
		}
		return found[i].TimeImpactMs > found[j].TimeImpactMs
	})
	return found
}

// RunAll runs the default registry over every session.
func RunAll(sessions []model.PageSession) []model.DetectedIssue {
	detectors := DefaultDetectors()
	var all []model.DetectedIssue
	for i := range sessions {
		all = append(all, RunDetectors(&sessions[i], detectors)...)
	}
	return all
}

func safeDetect(detector Detector, session *model.PageSession) (match *model.IssueMatch) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TotalDetectorPanics.Inc()
			logger.Error(engineLogTag, "Detector ", string(detector.Definition().Type), " panicked on session ", session.Id, ": ", r)
			match = nil
		}
	}()
	return detector.Detect(session)
}

// waterfallSeverity grades chain findings by their aggregate wasted time.
func waterfallSeverity(wastedMs float64) model.IssueSeverity {
	switch {
	case wastedMs > 500:
		return model.SeverityCritical
	case wastedMs > 100:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
