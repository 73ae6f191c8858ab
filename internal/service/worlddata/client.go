package worlddata

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/constants"
	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
	"github.com/marcosgv/tribalbot/pkg/errors"
)

// Client fetches and caches the three public roster feeds of one game world.
// The whole snapshot is replaced atomically on refresh, so concurrent readers
// never observe a half-updated roster.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	mu   sync.RWMutex
	snap *worldSnapshot
}

type worldSnapshot struct {
	players          map[int]*domain.Player
	playersByName    map[string]*domain.Player
	tribes           map[int]*domain.Tribe
	tribesByTag      map[string]*domain.Tribe
	villages         map[int]*domain.Village
	villagesByCoords map[domain.Coordinates]*domain.Village
	fetchedAt        time.Time
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: constants.FeedConfig.Timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Refresh forces a roster reload regardless of TTL.
func (c *Client) Refresh(ctx context.Context) error {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.logger.Info("World data refreshed",
		zap.Int("players", len(snap.players)),
		zap.Int("tribes", len(snap.tribes)),
		zap.Int("villages", len(snap.villages)),
	)
	return nil
}

// ensure returns a roster snapshot, refreshing when the TTL has expired.
// A stale snapshot is served when the refresh fails.
func (c *Client) ensure(ctx context.Context) (*worldSnapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && time.Since(snap.fetchedAt) < constants.CacheTTL.WorldData {
		return snap, nil
	}

	if err := c.Refresh(ctx); err != nil {
		if snap != nil {
			c.logger.Warn("World data refresh failed, serving stale cache",
				zap.Time("fetched_at", snap.fetchedAt),
				zap.Error(err),
			)
			return snap, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, nil
}

func (c *Client) fetchSnapshot(ctx context.Context) (*worldSnapshot, error) {
	var playerLines, tribeLines, villageLines []string

	p := pool.New().WithErrors()
	p.Go(func() error {
		lines, err := c.fetchFeed(ctx, "/map/player.txt")
		playerLines = lines
		return err
	})
	p.Go(func() error {
		lines, err := c.fetchFeed(ctx, "/map/ally.txt")
		tribeLines = lines
		return err
	})
	p.Go(func() error {
		lines, err := c.fetchFeed(ctx, "/map/village.txt")
		villageLines = lines
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	snap := &worldSnapshot{
		players:          make(map[int]*domain.Player, len(playerLines)),
		playersByName:    make(map[string]*domain.Player, len(playerLines)),
		tribes:           make(map[int]*domain.Tribe, len(tribeLines)),
		tribesByTag:      make(map[string]*domain.Tribe, len(tribeLines)),
		villages:         make(map[int]*domain.Village, len(villageLines)),
		villagesByCoords: make(map[domain.Coordinates]*domain.Village, len(villageLines)),
		fetchedAt:        time.Now(),
	}

	skipped := 0
	for _, line := range playerLines {
		player, ok := parsePlayerLine(line)
		if !ok {
			skipped++
			continue
		}
		p := player
		snap.players[p.ID] = &p
		snap.playersByName[util.Normalize(p.Name)] = &p
	}
	for _, line := range tribeLines {
		tribe, ok := parseTribeLine(line)
		if !ok {
			skipped++
			continue
		}
		t := tribe
		snap.tribes[t.ID] = &t
		snap.tribesByTag[util.Normalize(t.Tag)] = &t
	}
	for _, line := range villageLines {
		village, ok := parseVillageLine(line)
		if !ok {
			skipped++
			continue
		}
		v := village
		snap.villages[v.ID] = &v
		snap.villagesByCoords[v.Coords] = &v
	}

	if skipped > 0 {
		c.logger.Debug("Skipped malformed roster lines", zap.Int("count", skipped))
	}

	return snap, nil
}

func (c *Client) fetchFeed(ctx context.Context, path string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.FeedConfig.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewFeedError("roster feed request failed", path, 0, err)
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
		return nil, errors.NewFeedError("roster feed read failed", path, 0, err)
	}

	return lines, nil
}

func (c *Client) PlayerByID(ctx context.Context, id int) (*domain.Player, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.players[id], nil
}

func (c *Client) PlayerByName(ctx context.Context, name string) (*domain.Player, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.playersByName[util.Normalize(name)], nil
}

func (c *Client) TribeByID(ctx context.Context, id int) (*domain.Tribe, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.tribes[id], nil
}

// TribeByTagOrName resolves a tribe by tag first, then by full name.
func (c *Client) TribeByTagOrName(ctx context.Context, query string) (*domain.Tribe, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if tribe, ok := snap.tribesByTag[util.Normalize(query)]; ok {
		return tribe, nil
	}
	normalized := util.Normalize(query)
	for _, tribe := range snap.tribes {
		if util.Normalize(tribe.Name) == normalized {
			return tribe, nil
		}
	}
	return nil, nil
}

func (c *Client) VillageByID(ctx context.Context, id int) (*domain.Village, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.villages[id], nil
}

func (c *Client) VillageByCoords(ctx context.Context, coords domain.Coordinates) (*domain.Village, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return snap.villagesByCoords[coords], nil
}

func (c *Client) VillagesByPlayer(ctx context.Context, playerID int) ([]*domain.Village, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	var result []*domain.Village
	for _, v := range snap.villages {
		if v.PlayerID == playerID {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Points > result[j].Points })
	return result, nil
}

// TopPlayers returns the n highest-ranked players.
func (c *Client) TopPlayers(ctx context.Context, n int) ([]*domain.Player, error) {
	snap, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}
	players := make([]*domain.Player, 0, len(snap.players))
	for _, p := range snap.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Points > players[j].Points })
	if len(players) > n {
		players = players[:n]
	}
	return players, nil
}

// Owner resolves a feed player id into a conquest-event owner. Id 0 or an
// unknown id yields a barbarian owner.
func (c *Client) Owner(ctx context.Context, playerID int) domain.Owner {
	if playerID == 0 {
		return domain.Owner{}
	}

	snap, err := c.ensure(ctx)
	if err != nil {
		c.logger.Warn("Owner resolution without roster data", zap.Int("player_id", playerID), zap.Error(err))
		return domain.Owner{PlayerID: playerID, Name: fmt.Sprintf("#%d", playerID)}
	}

	player := snap.players[playerID]
	if player == nil {
		return domain.Owner{PlayerID: playerID, Name: fmt.Sprintf("#%d", playerID)}
	}

	owner := domain.Owner{PlayerID: playerID, Name: player.Name}
	if tribe := snap.tribes[player.TribeID]; tribe != nil {
		owner.TribeID = tribe.ID
		owner.TribeTag = tribe.Tag
		owner.TribeName = tribe.Name
	}
	return owner
}
