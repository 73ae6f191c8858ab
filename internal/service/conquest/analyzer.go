package conquest

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
)

// ProcessedEventSet is a bounded memory of recently-notified event identities.
// Oldest entries are evicted first once the cap is reached, which approximates
// a retention window without per-entry timers.
type ProcessedEventSet struct {
	mu    sync.Mutex
	max   int
	order []string
	seen  map[string]struct{}
}

func NewProcessedEventSet(max int) *ProcessedEventSet {
	return &ProcessedEventSet{
		max:  max,
		seen: make(map[string]struct{}, max),
	}
}

func (s *ProcessedEventSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[key]
	return ok
}

func (s *ProcessedEventSet) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return
	}

	s.seen[key] = struct{}{}
	s.order = append(s.order, key)

	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
}

func (s *ProcessedEventSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Analyzer turns a batch of raw events from either feed into the minimal set
// of new, relevant, classified events to notify, exactly once each. It is pure
// with respect to the watermark: advancing it is the caller's job, after
// successful dispatch, so a failed cycle can be retried from the same point.
type Analyzer struct {
	processed *ProcessedEventSet
	logger    *zap.Logger
}

func NewAnalyzer(maxProcessed int, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		processed: NewProcessedEventSet(maxProcessed),
		logger:    logger,
	}
}

// Analyze filters the batch to events strictly newer than the watermark, drops
// identities already notified, and classifies the remainder against the home
// tribe. Relevant events are marked processed as a side effect, so running the
// same batch twice yields nothing the second time.
func (a *Analyzer) Analyze(events []domain.ConquestEvent, cfg domain.MonitorConfig, watermark int64) []domain.RelevantEvent {
	var relevant []domain.RelevantEvent

	for _, event := range events {
		// strictly greater-than: the boundary event was processed last cycle
		if event.Timestamp <= watermark {
			continue
		}

		key := event.IdentityKey()
		if a.processed.Contains(key) {
			continue
		}

		classification, isRelevant := classify(event, cfg)
		if !isRelevant {
			continue
		}

		a.processed.Add(key)
		relevant = append(relevant, domain.RelevantEvent{
			Event:          event,
			Classification: classification,
		})
	}

	if len(relevant) > 0 {
		a.logger.Debug("Analyzer produced relevant events",
			zap.Int("input", len(events)),
			zap.Int("relevant", len(relevant)),
		)
	}

	return relevant
}

// ProcessedCount reports the current dedup-set size.
func (a *Analyzer) ProcessedCount() int {
	return a.processed.Len()
}

// classify determines relevance and classification for one event.
//
// An event where both owners resolve to the home tribe is an internal
// transfer: always NEUTRAL, never a loss, so it cannot trigger a mention.
func classify(event domain.ConquestEvent, cfg domain.MonitorConfig) (domain.Classification, bool) {
	newHome := cfg.IsHomeTribe(event.NewOwner)
	oldHome := cfg.IsHomeTribe(event.OldOwner)

	var classification domain.Classification
	switch {
	case newHome && oldHome:
		classification = domain.ClassNeutral
	case newHome:
		classification = domain.ClassGain
	case oldHome:
		classification = domain.ClassLoss
	default:
		classification = domain.ClassNeutral
	}

	if cfg.Filter.Mode != domain.FilterSpecific || cfg.Filter.TribeName == "" {
		return classification, true
	}

	// Specific filter: gains are narrowed to the configured tribe, but home
	// losses are always surfaced since they route to a separate channel.
	if oldHome && !newHome {
		return classification, true
	}
	if ownerMatchesTribe(event.NewOwner, cfg.Filter.TribeName) {
		return classification, true
	}
	return classification, false
}

// ownerMatchesTribe does a case-insensitive substring match on the owner's
// tribe tag or full name.
func ownerMatchesTribe(owner domain.Owner, query string) bool {
	if owner.IsBarbarian() {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(owner.TribeTag), needle) ||
		strings.Contains(strings.ToLower(owner.TribeName), needle)
}
