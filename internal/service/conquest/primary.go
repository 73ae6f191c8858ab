package conquest

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/service/worlddata"
	"github.com/marcosgv/tribalbot/internal/util"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

// PrimarySource reads the raw ownership-change feed: comma-separated lines of
// `villageId,timestampSeconds,newOwnerId,oldOwnerId`, owner id 0 = barbarian.
// Owner names and tribes are resolved through the roster client.
type PrimarySource struct {
	httpClient *http.Client
	baseURL    string
	world      *worlddata.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

func NewPrimarySource(baseURL string, world *worlddata.Client, logger *zap.Logger) *PrimarySource {
	return &PrimarySource{
		httpClient: &http.Client{Timeout: constants.FeedConfig.Timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		world:      world,
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

func (s *PrimarySource) Name() string {
	return "conquer-feed"
}

func (s *PrimarySource) Fetch(ctx context.Context, since int64) ([]domain.ConquestEvent, error) {
	if !s.breaker.CanExecute() {
		return nil, errors.NewFeedError("conquer feed circuit open", "/map/conquer.txt", 503, nil)
	}

	lines, err := s.fetchLines(ctx)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, err
	}
	s.breaker.RecordSuccess()

	events := make([]domain.ConquestEvent, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		event, ok := s.parseLine(ctx, line)
		if !ok {
			skipped++
			continue
		}
		if since > 0 && event.Timestamp <= since {
			continue
		}
		events = append(events, event)
	}

	if skipped > 0 {
		s.logger.Debug("Skipped malformed conquer lines", zap.Int("count", skipped))
	}

	return events, nil
}

func (s *PrimarySource) fetchLines(ctx context.Context) ([]string, error) {
	path := "/map/conquer.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.FeedConfig.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewFeedError("conquer feed request failed", path, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFeedError(fmt.Sprintf("unexpected status %d", resp.StatusCode), path, resp.StatusCode, nil)
	}

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewFeedError("conquer feed read failed", path, 0, err)
	}

	return lines, nil
}

func (s *PrimarySource) parseLine(ctx context.Context, line string) (domain.ConquestEvent, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return domain.ConquestEvent{}, false
	}

	villageID, err1 := strconv.Atoi(fields[0])
	timestamp, err2 := strconv.ParseInt(fields[1], 10, 64)
	newOwnerID, err3 := strconv.Atoi(fields[2])
	oldOwnerID, err4 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return domain.ConquestEvent{}, false
	}

	event := domain.ConquestEvent{
		Source:    domain.SourceRaw,
		VillageID: villageID,
		Timestamp: timestamp,
		OldOwner:  s.world.Owner(ctx, oldOwnerID),
		NewOwner:  s.world.Owner(ctx, newOwnerID),
	}

	if village, err := s.world.VillageByID(ctx, villageID); err == nil && village != nil {
		event.VillageName = village.Name
		event.Coords = village.Coords
		event.Points = village.Points
	}

	return event, true
}
