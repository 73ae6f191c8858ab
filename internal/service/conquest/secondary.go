package conquest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

const scrapedTimeLayout = "2006-01-02 - 15:04:05"

var (
	villageCellPattern = regexp.MustCompile(`^(.*?)\s*\((\d{1,3})\|(\d{1,3})\)`)
	ownerCellPattern   = regexp.MustCompile(`^(.*?)\s*\[(.+)\]$`)
)

// ennoblementHeaders are the fixed column labels that identify the conquest
// table among the other tables of the scraped page.
var ennoblementHeaders = []string{"village", "points", "old owner", "new owner", "date"}

// ScrapedSource scrapes the TWStats recent-ennoblements table as a resilience
// fallback for the raw feed. Village identity is synthesized from name plus
// coordinates; timestamps are local to the game server.
type ScrapedSource struct {
	httpClient *http.Client
	pageURL    string
	location   *time.Location
	logger     *zap.Logger
}

func NewScrapedSource(twstatsBaseURL string, location *time.Location, logger *zap.Logger) *ScrapedSource {
	return &ScrapedSource{
		httpClient: &http.Client{Timeout: constants.FeedConfig.Timeout},
		pageURL:    strings.TrimRight(twstatsBaseURL, "/") + "/index.php?page=ennoblements&live=live",
		location:   location,
		logger:     logger,
	}
}

func (s *ScrapedSource) Name() string {
	return "twstats-scrape"
}

func (s *ScrapedSource) Fetch(ctx context.Context, since int64) ([]domain.ConquestEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.FeedConfig.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewFeedError("ennoblements page request failed", s.pageURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFeedError(fmt.Sprintf("unexpected status %d", resp.StatusCode), s.pageURL, resp.StatusCode, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewFeedError("ennoblements page parse failed", s.pageURL, 0, err)
	}

	table := s.findConquestTable(doc)
	if table == nil {
		return nil, errors.NewParseError("no conquest table found - page structure may have changed", "ennoblements", 0)
	}

	var events []domain.ConquestEvent
	parseErrors := 0

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		event, ok := s.parseRow(row)
		if !ok {
			parseErrors++
			return
		}
		if since > 0 && event.Timestamp <= since {
			return
		}
		events = append(events, event)
	})

	if len(events) == 0 && parseErrors > 0 {
		return nil, errors.NewParseError("every conquest row failed to parse", "ennoblements", parseErrors)
	}

	if parseErrors > 0 {
		s.logger.Debug("Skipped unparsable conquest rows", zap.Int("count", parseErrors))
	}

	return events, nil
}

// findConquestTable locates the table whose header row carries the expected
// column labels.
func (s *ScrapedSource) findConquestTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("tr").First().Text())
		for _, label := range ennoblementHeaders {
			if !strings.Contains(header, label) {
				return true
			}
		}
		found = table
		return false
	})

	return found
}

func (s *ScrapedSource) parseRow(row *goquery.Selection) (domain.ConquestEvent, bool) {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return domain.ConquestEvent{}, false
	}

	name, coords, ok := parseVillageCell(strings.TrimSpace(cells.Eq(0).Text()))
	if !ok {
		return domain.ConquestEvent{}, false
	}

	points, err := strconv.Atoi(cleanNumber(cells.Eq(1).Text()))
	if err != nil {
		return domain.ConquestEvent{}, false
	}

	oldOwner := parseOwnerCell(strings.TrimSpace(cells.Eq(2).Text()))
	newOwner := parseOwnerCell(strings.TrimSpace(cells.Eq(3).Text()))

	when, err := time.ParseInLocation(scrapedTimeLayout, strings.TrimSpace(cells.Eq(4).Text()), s.location)
	if err != nil {
		return domain.ConquestEvent{}, false
	}

	return domain.ConquestEvent{
		Source:      domain.SourceScraped,
		VillageName: name,
		Coords:      coords,
		Points:      points,
		OldOwner:    oldOwner,
		NewOwner:    newOwner,
		Timestamp:   when.Unix(),
	}, true
}

// parseVillageCell splits `Name (x|y) K55` into name and coordinates.
func parseVillageCell(text string) (string, domain.Coordinates, bool) {
	match := villageCellPattern.FindStringSubmatch(text)
	if match == nil {
		return "", domain.Coordinates{}, false
	}

	x, err1 := strconv.Atoi(match[2])
	y, err2 := strconv.Atoi(match[3])
	if err1 != nil || err2 != nil {
		return "", domain.Coordinates{}, false
	}

	coords := domain.Coordinates{X: x, Y: y}
	if !coords.Valid() {
		return "", domain.Coordinates{}, false
	}

	return strings.TrimSpace(match[1]), coords, true
}

// parseOwnerCell interprets owner text: `Name [TAG]` carries a tribe tag, bare
// `Name` has none, and the barbarian marker string yields a barbarian owner.
func parseOwnerCell(text string) domain.Owner {
	if text == "" || domain.IsBarbarianName(text) {
		return domain.Owner{}
	}

	if match := ownerCellPattern.FindStringSubmatch(text); match != nil {
		return domain.Owner{
			PlayerID: -1, // unknown numeric id, identity comes from the name
			Name:     strings.TrimSpace(match[1]),
			TribeTag: strings.TrimSpace(match[2]),
		}
	}

	return domain.Owner{PlayerID: -1, Name: text}
}

func cleanNumber(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", "")
	return text
}
