package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	profile     string
	logger      *zap.Logger
}

// NewMapboxClient creates the matrix/directions provider backed by the
// Mapbox APIs with the configured routing profile (cycling by default).
func NewMapboxClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.MatrixRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		profile:     cfg.Profile,
		logger:      logger,
	}
}

// matrixResponse is the Matrix API wire format.
type matrixResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"` // meters
	Durations [][]float64 `json:"durations"` // seconds
}

// directionsResponse is the subset of the Directions API wire format used
// for connector geometry.
type directionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// GetMatrix returns the full NxN travel distance/duration matrix for the
// given waypoints, in the same order.
func (c *client) GetMatrix(ctx context.Context, points []domain.Point) (*domain.CostMatrix, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("waypoint list cannot be empty")
	}

	// Mapbox caps matrix requests at 25 coordinates
	if len(points) > repository.MaxMatrixWaypoints {
		return nil, fmt.Errorf("%d waypoints exceed Mapbox limit of %d", len(points), repository.MaxMatrixWaypoints)
	}

	coordinates := make([]string, len(points))
	for i, p := range points {
		coordinates[i] = fmt.Sprintf("%f,%f", p.Lon, p.Lat)
	}

	url := fmt.Sprintf("%s/directions-matrix/v1/%s/%s?annotations=distance,duration&access_token=%s",
		c.baseURL,
		c.profile,
		strings.Join(coordinates, ";"),
		c.accessToken,
	)

	c.logger.Debug("Calling Mapbox Matrix API",
		zap.Int("waypoints", len(points)),
		zap.String("profile", c.profile))

	var matrixResp matrixResponse
	if err := c.getJSON(ctx, url, &matrixResp); err != nil {
		return nil, err
	}

	if matrixResp.Code != "Ok" {
		c.logger.Error("Mapbox API returned non-OK code", zap.String("code", matrixResp.Code))
		return nil, fmt.Errorf("mapbox API returned code: %s", matrixResp.Code)
	}

	matrix := &domain.CostMatrix{
		Distances: matrixResp.Distances,
		Durations: matrixResp.Durations,
	}
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("mapbox matrix is unusable: %w", err)
	}

	return matrix, nil
}

// GetConnector returns the road-network path between two waypoints from the
// Directions API. A nil line with nil error means no route was found and the
// caller should fall back to a straight line.
func (c *client) GetConnector(ctx context.Context, from, to domain.Point) (orb.LineString, error) {
	url := fmt.Sprintf("%s/directions/v5/%s/%f,%f;%f,%f?geometries=geojson&overview=full&access_token=%s",
		c.baseURL,
		c.profile,
		from.Lon, from.Lat,
		to.Lon, to.Lat,
		c.accessToken,
	)

	var dirResp directionsResponse
	if err := c.getJSON(ctx, url, &dirResp); err != nil {
		return nil, err
	}

	if dirResp.Code != "Ok" || len(dirResp.Routes) == 0 {
		c.logger.Warn("Mapbox Directions returned no route",
			zap.String("code", dirResp.Code),
			zap.Float64("from_lat", from.Lat),
			zap.Float64("to_lat", to.Lat))
		return nil, nil
	}

	coords := dirResp.Routes[0].Geometry.Coordinates
	line := make(orb.LineString, 0, len(coords))
	for _, pt := range coords {
		if len(pt) < 2 {
			continue
		}
		line = append(line, orb.Point{pt[0], pt[1]})
	}
	return line, nil
}

func (c *client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("mapbox API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
