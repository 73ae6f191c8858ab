package killstats

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
)

func TestParseEntriesNewlineDelimited(t *testing.T) {
	entries := ParseEntries("1,100,50000\n2,200,42000\n\nbad,line\n3,300,1000\n")
	require.Len(t, entries, 3)
	assert.Equal(t, domain.KillEntry{Rank: 1, PlayerID: 100, Kills: 50000}, entries[0])
	assert.Equal(t, domain.KillEntry{Rank: 3, PlayerID: 300, Kills: 1000}, entries[2])
}

func TestParseEntriesWithoutDelimiters(t *testing.T) {
	// some mirrors strip the newlines; the triplet pattern still recovers rows
	entries := ParseEntries("1,100,50000 2,200,42000")
	require.Len(t, entries, 2)
	assert.Equal(t, 200, entries[1].PlayerID)
}

func TestParseEntriesEmpty(t *testing.T) {
	assert.Empty(t, ParseEntries(""))
	assert.Empty(t, ParseEntries("garbage"))
}

func gzipBody(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func killServer(t *testing.T, boards map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for cat, body := range boards {
			if r.URL.Path == fmt.Sprintf("/map/kill_%s.txt.gz", cat) {
				w.Write(gzipBody(t, body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBoardFetchesAndParses(t *testing.T) {
	server := killServer(t, map[string]string{
		"att": "1,100,50000\n2,200,42000\n",
	})
	client := NewClient(server.URL, t.TempDir(), zap.NewNop())

	entries, err := client.Board(context.Background(), domain.KillAttack)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 100, entries[0].PlayerID)
}

func TestPlayerKillsSkipsUnreachableBoards(t *testing.T) {
	// only the attack board exists; the other three 404
	server := killServer(t, map[string]string{
		"att": "5,100,7000\n",
	})
	client := NewClient(server.URL, t.TempDir(), zap.NewNop())

	kills, err := client.PlayerKills(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, kills.ByCategory, 1)
	assert.Equal(t, 7000, kills.ByCategory[domain.KillAttack].Kills)
}

func TestPlayerKillsUnrankedPlayer(t *testing.T) {
	server := killServer(t, map[string]string{
		"all": "1,999,100\n", "att": "", "def": "", "sup": "",
	})
	client := NewClient(server.URL, t.TempDir(), zap.NewNop())

	kills, err := client.PlayerKills(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, kills.ByCategory)
}

func TestBoardServesFileCacheWhenFeedDies(t *testing.T) {
	dataDir := t.TempDir()
	boards := map[string]string{"all": "1,100,500\n"}
	server := killServer(t, boards)

	client := NewClient(server.URL, dataDir, zap.NewNop())
	_, err := client.Board(context.Background(), domain.KillAll)
	require.NoError(t, err)

	// feed goes away; a fresh client must fall back to the file mirror
	server.Close()
	cold := NewClient(server.URL, dataDir, zap.NewNop())
	entries, err := cold.Board(context.Background(), domain.KillAll)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 500, entries[0].Kills)
}
