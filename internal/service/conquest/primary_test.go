package conquest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/service/worlddata"
)

func conquerServer(t *testing.T, conquerBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/map/conquer.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(conquerBody))
	})
	mux.HandleFunc("/map/player.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("100,Atacante,7,5,12000,3\n200,Defensor,9,2,4000,40\n"))
	})
	mux.HandleFunc("/map/ally.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("7,Caballeros,CDC,25,300,500000,550000,1\n9,Enemigos,ENE,30,200,400000,420000,2\n"))
	})
	mux.HandleFunc("/map/village.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("1001,Molino+Viejo,512,534,200,3421,900\n"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestPrimaryFetchNormalizesEvents(t *testing.T) {
	server := conquerServer(t, "1001,1700000100,100,200\nmalformed\n1001,1700000050,200,0\n")
	world := worlddata.NewClient(server.URL, zap.NewNop())
	src := NewPrimarySource(server.URL, world, zap.NewNop())

	events, err := src.Fetch(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, domain.SourceRaw, first.Source)
	assert.Equal(t, 1001, first.VillageID)
	assert.Equal(t, "Molino Viejo", first.VillageName)
	assert.Equal(t, domain.Coordinates{X: 512, Y: 534}, first.Coords)
	assert.Equal(t, 3421, first.Points)
	assert.Equal(t, "Atacante", first.NewOwner.Name)
	assert.Equal(t, "CDC", first.NewOwner.TribeTag)
	assert.Equal(t, "Defensor", first.OldOwner.Name)

	// owner id 0 resolves to a barbarian
	second := events[1]
	assert.True(t, second.OldOwner.IsBarbarian())
	assert.Equal(t, "Defensor", second.NewOwner.Name)
}

func TestPrimaryFetchAppliesSincePrefilter(t *testing.T) {
	server := conquerServer(t, "1001,1700000100,100,200\n1001,1700000050,200,0\n")
	world := worlddata.NewClient(server.URL, zap.NewNop())
	src := NewPrimarySource(server.URL, world, zap.NewNop())

	events, err := src.Fetch(context.Background(), 1700000050)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(1700000100), events[0].Timestamp)
}

func TestPrimaryFetchCircuitOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	world := worlddata.NewClient(server.URL, zap.NewNop())
	src := NewPrimarySource(server.URL, world, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := src.Fetch(context.Background(), 0)
		require.Error(t, err)
	}

	// breaker is now open, the request never leaves the process
	_, err := src.Fetch(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
}
