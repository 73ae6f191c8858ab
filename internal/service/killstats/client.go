package killstats

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

// entryPattern splits ranking payloads that arrive without line delimiters.
// The transport does not reliably preserve newlines, but every entry is a
// strict digits,digits,digits triplet.
var entryPattern = regexp.MustCompile(`(\d+),(\d+),(\d+)`)

// Client fetches the four gzip-compressed opponents-defeated ranking feeds.
// Each board is cached in memory with a TTL and mirrored to a local file so a
// transient fetch failure serves stale data instead of nothing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataDir    string
	logger     *zap.Logger

	mu     sync.RWMutex
	boards map[domain.KillCategory]*cachedBoard
}

type cachedBoard struct {
	entries   []domain.KillEntry
	byPlayer  map[int]domain.KillEntry
	fetchedAt time.Time
}

func NewClient(baseURL, dataDir string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: constants.FeedConfig.Timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		dataDir:    dataDir,
		logger:     logger,
		boards:     make(map[domain.KillCategory]*cachedBoard),
	}
}

// Board returns the ranking entries for one category, refreshing when stale.
func (c *Client) Board(ctx context.Context, category domain.KillCategory) ([]domain.KillEntry, error) {
	board, err := c.ensure(ctx, category)
	if err != nil {
		return nil, err
	}
	return board.entries, nil
}

// PlayerKills returns one player's entry in every category. Categories the
// player is unranked in are absent from the result map.
func (c *Client) PlayerKills(ctx context.Context, playerID int) (*domain.PlayerKills, error) {
	result := &domain.PlayerKills{
		PlayerID:   playerID,
		ByCategory: make(map[domain.KillCategory]domain.KillEntry),
	}

	for _, category := range domain.KillCategories {
		board, err := c.ensure(ctx, category)
		if err != nil {
			// one unreachable board should not hide the others
			c.logger.Warn("Kill board unavailable",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			continue
		}
		if entry, ok := board.byPlayer[playerID]; ok {
			result.ByCategory[category] = entry
		}
	}

	return result, nil
}

func (c *Client) ensure(ctx context.Context, category domain.KillCategory) (*cachedBoard, error) {
	c.mu.RLock()
	board := c.boards[category]
	c.mu.RUnlock()

	if board != nil && time.Since(board.fetchedAt) < constants.CacheTTL.KillStats {
		return board, nil
	}

	raw, err := c.fetch(ctx, category)
	if err != nil {
		if board != nil {
			c.logger.Warn("Kill feed fetch failed, serving stale cache",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			return board, nil
		}
		if raw = c.readCacheFile(category); raw == "" {
			return nil, err
		}
		c.logger.Warn("Kill feed fetch failed, serving file cache",
			zap.String("category", string(category)),
		)
	} else {
		c.writeCacheFile(category, raw)
	}

	entries := ParseEntries(raw)
	fresh := &cachedBoard{
		entries:   entries,
		byPlayer:  make(map[int]domain.KillEntry, len(entries)),
		fetchedAt: time.Now(),
	}
	for _, e := range entries {
		fresh.byPlayer[e.PlayerID] = e
	}

	c.mu.Lock()
	c.boards[category] = fresh
	c.mu.Unlock()

	c.logger.Debug("Kill board refreshed",
		zap.String("category", string(category)),
		zap.Int("entries", len(entries)),
	)
	return fresh, nil
}

func (c *Client) fetch(ctx context.Context, category domain.KillCategory) (string, error) {
	path := fmt.Sprintf("/map/kill_%s.txt.gz", category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", constants.FeedConfig.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewFeedError("kill feed request failed", path, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewFeedError(fmt.Sprintf("unexpected status %d", resp.StatusCode), path, resp.StatusCode, nil)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return "", errors.NewFeedError("kill feed is not valid gzip", path, 0, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return "", errors.NewFeedError("kill feed decompression failed", path, 0, err)
	}

	return string(data), nil
}

// ParseEntries parses `ranking,playerId,kills` entries. Payloads with newlines
// are split line-wise; otherwise the triplet pattern is matched across the
// whole payload. Malformed entries are dropped.
func ParseEntries(raw string) []domain.KillEntry {
	var entries []domain.KillEntry

	appendEntry := func(rank, player, kills string) {
		r, err1 := strconv.Atoi(rank)
		p, err2 := strconv.Atoi(player)
		k, err3 := strconv.Atoi(kills)
		if err1 != nil || err2 != nil || err3 != nil {
			return
		}
		entries = append(entries, domain.KillEntry{Rank: r, PlayerID: p, Kills: k})
	}

	if strings.Contains(raw, "\n") {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fields := strings.Split(line, ",")
			if len(fields) != 3 {
				continue
			}
			appendEntry(fields[0], fields[1], fields[2])
		}
		return entries
	}

	for _, match := range entryPattern.FindAllStringSubmatch(raw, -1) {
		appendEntry(match[1], match[2], match[3])
	}
	return entries
}

func (c *Client) cacheFile(category domain.KillCategory) string {
	return filepath.Join(c.dataDir, fmt.Sprintf("kill_%s.txt", category))
}

func (c *Client) readCacheFile(category domain.KillCategory) string {
	data, err := os.ReadFile(c.cacheFile(category))
	if err != nil {
		return ""
	}
	return string(data)
}

func (c *Client) writeCacheFile(category domain.KillCategory, raw string) {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		c.logger.Warn("Failed to create data dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(c.cacheFile(category), []byte(raw), 0o644); err != nil {
		c.logger.Warn("Failed to write kill feed cache",
			zap.String("category", string(category)),
			zap.Error(err),
		)
	}
}
