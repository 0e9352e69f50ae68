package vis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beachref/livesync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientValidation(t *testing.T) {
	_, err := NewHTTPClient(ClientConfig{BaseURL: "", APIKey: "k"})
	assert.Error(t, err)

	_, err = NewHTTPClient(ClientConfig{BaseURL: "http://example.org", APIKey: ""})
	assert.Error(t, err)
}

func TestFetchLiveScore(t *testing.T) {
	t.Run("parses a live payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/matches/314/live", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"no": 314,
				"status": "live",
				"matchPointsA": 1,
				"matchPointsB": 0,
				"pointsTeamASet1": 21,
				"pointsTeamASet2": 13,
				"pointsTeamBSet1": 17,
				"pointsTeamBSet2": 11
			}`))
		}))
		defer server.Close()

		client, err := NewHTTPClient(ClientConfig{BaseURL: server.URL, APIKey: "secret"})
		require.NoError(t, err)

		live, err := client.FetchLiveScore(context.Background(), 314)
		require.NoError(t, err)

		assert.Equal(t, 314, live.MatchNo)
		assert.Equal(t, models.MatchStatusLive, live.Status)
		assert.Equal(t, 1, live.Score.MatchPointsA)
		assert.Equal(t, [3]int{21, 13, 0}, live.Score.PointsTeamASet)
		assert.Equal(t, [3]int{17, 11, 0}, live.Score.PointsTeamBSet)
	})

	t.Run("non-200 is a rejected request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client, err := NewHTTPClient(ClientConfig{BaseURL: server.URL, APIKey: "secret"})
		require.NoError(t, err)

		_, err = client.FetchLiveScore(context.Background(), 314)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRequestRejected))
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		client, err := NewHTTPClient(ClientConfig{BaseURL: server.URL, APIKey: "secret"})
		require.NoError(t, err)

		_, err = client.FetchLiveScore(context.Background(), 314)
		assert.Error(t, err)
	})
}
