package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	apperrors "github.com/trip-planner/internal/pkg/errors"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewStravaClient creates the segment catalog provider backed by the Strava
// API v3.
func NewStravaClient(cfg *config.StravaConfig, logger *zap.Logger) repository.SegmentRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

// segmentResponse is the subset of the Strava segment detail wire format we
// consume.
type segmentResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	StartLatLng        []float64 `json:"start_latlng"`
	EndLatLng          []float64 `json:"end_latlng"`
}

// streamsResponse is the Strava key-by-type streams wire format.
type streamsResponse struct {
	LatLng struct {
		Data [][]float64 `json:"data"`
	} `json:"latlng"`
}

// GetSegment resolves a segment id against the Strava API. The requested
// riding direction is applied before returning: reversed segments have their
// endpoints swapped and their path reversed.
func (c *client) GetSegment(ctx context.Context, req domain.SegmentRequest) (*domain.SegmentMeta, error) {
	url := fmt.Sprintf("%s/segments/%s", c.baseURL, req.ID)

	c.logger.Debug("Fetching segment from Strava",
		zap.String("segment_id", req.ID),
		zap.Bool("reversed", req.Reversed))

	var segResp segmentResponse
	if err := c.getJSON(ctx, url, &segResp); err != nil {
		return nil, err
	}

	meta := &domain.SegmentMeta{
		ID:                  req.ID,
		Name:                segResp.Name,
		DistanceMeters:      segResp.Distance,
		ElevationGainMeters: segResp.TotalElevationGain,
	}
	if len(segResp.StartLatLng) >= 2 {
		meta.Start = domain.Point{Lat: segResp.StartLatLng[0], Lon: segResp.StartLatLng[1]}
	}
	if len(segResp.EndLatLng) >= 2 {
		meta.End = domain.Point{Lat: segResp.EndLatLng[0], Lon: segResp.EndLatLng[1]}
	}

	// Path is best effort: a segment without streams still plans fine, the
	// stitcher just draws a straight line for it.
	if path, err := c.getStreams(ctx, req.ID); err != nil {
		c.logger.Warn("Failed to fetch segment streams, continuing without path",
			zap.String("segment_id", req.ID),
			zap.Error(err))
	} else {
		meta.Path = path
	}

	if req.Reversed {
		meta.Start, meta.End = meta.End, meta.Start
		reversePath(meta.Path)
	}

	return meta, nil
}

func (c *client) getStreams(ctx context.Context, id string) (orb.LineString, error) {
	url := fmt.Sprintf("%s/segments/%s/streams?keys=latlng&key_by_type=true", c.baseURL, id)

	var streams streamsResponse
	if err := c.getJSON(ctx, url, &streams); err != nil {
		return nil, err
	}

	line := make(orb.LineString, 0, len(streams.LatLng.Data))
	for _, pt := range streams.LatLng.Data {
		if len(pt) < 2 {
			continue
		}
		// Strava streams are lat/lon, geometry is lon/lat.
		line = append(line, orb.Point{pt[1], pt[0]})
	}
	return line, nil
}

func reversePath(line orb.LineString) {
	for i, j := 0, len(line)-1; i < j; i, j = i+1, j-1 {
		line[i], line[j] = line[j], line[i]
	}
}

func (c *client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ErrSegmentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Strava API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("strava API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
