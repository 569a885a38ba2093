package strava

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
)

const segmentBody = `{
	"id": 229781,
	"name": "Hawk Hill",
	"distance": 2684.82,
	"total_elevation_gain": 155.7,
	"start_latlng": [37.8331, -122.4834],
	"end_latlng": [37.8280, -122.4981]
}`

const streamsBody = `{
	"latlng": {
		"data": [[37.8331, -122.4834], [37.8305, -122.4900], [37.8280, -122.4981]]
	}
}`

func newTestServer(t *testing.T, streamsStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/segments/229781":
			w.Write([]byte(segmentBody))
		case "/segments/229781/streams":
			if streamsStatus != http.StatusOK {
				w.WriteHeader(streamsStatus)
				return
			}
			w.Write([]byte(streamsBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(baseURL string) *client {
	logger, _ := zap.NewDevelopment()
	return NewStravaClient(&config.StravaConfig{
		BaseURL:        baseURL,
		AccessToken:    "test_token",
		RequestTimeout: 30,
	}, logger).(*client)
}

func TestClient_GetSegment(t *testing.T) {
	t.Run("forward direction", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK)
		defer server.Close()

		meta, err := testClient(server.URL).GetSegment(context.Background(), domain.SegmentRequest{ID: "229781"})
		require.NoError(t, err)
		assert.Equal(t, "Hawk Hill", meta.Name)
		assert.Equal(t, 2684.82, meta.DistanceMeters)
		assert.Equal(t, 155.7, meta.ElevationGainMeters)
		assert.Equal(t, domain.Point{Lat: 37.8331, Lon: -122.4834}, meta.Start)
		assert.Equal(t, domain.Point{Lat: 37.8280, Lon: -122.4981}, meta.End)

		require.Len(t, meta.Path, 3)
		// lon/lat order in geometry
		assert.Equal(t, -122.4834, meta.Path[0][0])
		assert.Equal(t, 37.8331, meta.Path[0][1])
	})

	t.Run("reversed direction flips endpoints and path", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK)
		defer server.Close()

		meta, err := testClient(server.URL).GetSegment(context.Background(), domain.SegmentRequest{ID: "229781", Reversed: true})
		require.NoError(t, err)
		assert.Equal(t, domain.Point{Lat: 37.8280, Lon: -122.4981}, meta.Start)
		assert.Equal(t, domain.Point{Lat: 37.8331, Lon: -122.4834}, meta.End)

		require.Len(t, meta.Path, 3)
		assert.Equal(t, -122.4981, meta.Path[0][0])
		assert.Equal(t, -122.4834, meta.Path[2][0])
	})

	t.Run("missing streams is not fatal", func(t *testing.T) {
		server := newTestServer(t, http.StatusInternalServerError)
		defer server.Close()

		meta, err := testClient(server.URL).GetSegment(context.Background(), domain.SegmentRequest{ID: "229781"})
		require.NoError(t, err)
		assert.Empty(t, meta.Path)
		assert.Equal(t, 2684.82, meta.DistanceMeters)
	})

	t.Run("unknown segment", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK)
		defer server.Close()

		meta, err := testClient(server.URL).GetSegment(context.Background(), domain.SegmentRequest{ID: "999999"})
		assert.Error(t, err)
		assert.Nil(t, meta)
		assert.Contains(t, err.Error(), "not found")
	})
}
