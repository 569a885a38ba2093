package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/pkg/validator"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/usecase/dto"
)

// TripHandler exposes the planning pipeline over HTTP.
type TripHandler struct {
	tripUC *usecase.TripUseCase
	logger *zap.Logger
}

func NewTripHandler(tripUC *usecase.TripUseCase, logger *zap.Logger) *TripHandler {
	return &TripHandler{
		tripUC: tripUC,
		logger: logger,
	}
}

// PlanTrip godoc
// @Summary Plan a multi-day trip
// @Description Solves the riding order across the requested segments, splits the route into days under the given caps and returns the full plan with per-day geometry
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body dto.PlanTripRequest true "Planning request"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/trips/plan [post]
func (h *TripHandler) PlanTrip(c *fiber.Ctx) error {
	var req dto.PlanTripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.tripUC.PlanTrip(c.Context(), &req)
	if err != nil {
		h.logger.Warn("Planning request failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result.Days),
	})
}

// PlanTripAsync godoc
// @Summary Enqueue a planning job
// @Description Publishes the planning request to the job stream and returns a job id for later pickup
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body dto.PlanTripRequest true "Planning request"
// @Success 202 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/trips/plan/async [post]
func (h *TripHandler) PlanTripAsync(c *fiber.Ctx) error {
	var req dto.PlanTripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.tripUC.EnqueuePlan(c.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to enqueue planning job", zap.Error(err))
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse{Data: result})
}

// GetJobStatus godoc
// @Summary Get status of a planning job
// @Tags Trips
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/trips/plan/jobs/{jobId} [get]
func (h *TripHandler) GetJobStatus(c *fiber.Ctx) error {
	result, err := h.tripUC.GetJobStatus(c.Context(), c.Params("jobId"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// GetTrip godoc
// @Summary Get a planned trip by ID
// @Tags Trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/trips/{id} [get]
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	trip, err := h.tripUC.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.FromTripPlan(trip), &utils.Meta{
		Total: len(trip.Days),
	})
}

// ListTrips godoc
// @Summary List recently planned trips
// @Tags Trips
// @Produce json
// @Param limit query int false "Maximum number of trips" default(20)
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/trips [get]
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	trips, err := h.tripUC.ListRecentTrips(c.Context(), limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	result := make([]*dto.TripPlanResponse, 0, len(trips))
	for _, trip := range trips {
		result = append(result, dto.FromTripPlan(trip))
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result),
	})
}

// GetTripGeoJSON godoc
// @Summary Export a planned trip as GeoJSON
// @Description Returns a FeatureCollection with one LineString feature per day, carrying the day totals as properties
// @Tags Trips
// @Produce json
// @Param id path string true "Trip ID"
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/trips/{id}/geojson [get]
func (h *TripHandler) GetTripGeoJSON(c *fiber.Ctx) error {
	trip, err := h.tripUC.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	fc := geojson.NewFeatureCollection()
	for _, day := range trip.Days {
		feature := geojson.NewFeature(day.Geometry)
		feature.Properties["day"] = day.Number
		feature.Properties["name"] = fmt.Sprintf("Day %d", day.Number)
		feature.Properties["distance_meters"] = day.DistanceMeters
		feature.Properties["elevation_gain_meters"] = day.ElevationGainMeters
		feature.Properties["duration_seconds"] = day.DurationSeconds
		feature.Properties["segment_ids"] = day.SegmentIDs
		feature.Properties["segment_names"] = day.SegmentNames
		fc.Append(feature)
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.JSON(fc)
}
