package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkride/internal/domain"
	"parkride/internal/service"
)

// FacilityHandler handles HTTP requests for parking facilities.
type FacilityHandler struct {
	catalogService *service.CatalogService
	reviewService  *service.ReviewService
}

// NewFacilityHandler creates a new FacilityHandler.
func NewFacilityHandler(catalogService *service.CatalogService, reviewService *service.ReviewService) *FacilityHandler {
	return &FacilityHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
	}
}

// ListFacilitiesQuery is the query string of a facility listing.
type ListFacilitiesQuery struct {
	PageQuery
	City        string   `form:"city"`
	Amenities   []string `form:"amenities"`
	MinRating   float64  `form:"minRating" binding:"omitempty,min=0,max=5"`
	VehicleType string   `form:"vehicleType"`
	Status      string   `form:"status"`
}

// SearchQuery is the query string of a proximity search.
type SearchQuery struct {
	Lat    *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng    *float64 `form:"lng" binding:"required,min=-180,max=180"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0"`
	Limit  int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SubmitReviewRequest is the HTTP request body for a review.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

// ListFacilities handles GET /api/parking/facilities
func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	var q ListFacilitiesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.catalogService.ListFacilities(c.Request.Context(), service.ListFacilitiesRequest{
		Filter: domain.FacilityFilter{
			Status:      domain.FacilityStatus(q.Status),
			City:        strings.TrimSpace(q.City),
			Amenities:   splitList(q.Amenities),
			MinRating:   q.MinRating,
			VehicleType: q.VehicleType,
		},
		Page: q.toPage(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"facilities": toFacilityResponses(result.Facilities),
		"pagination": toPagination(result.Page, result.Total, result.Pages),
	})
}

// GetFacility handles GET /api/parking/facilities/:id
func (h *FacilityHandler) GetFacility(c *gin.Context) {
	facility, err := h.catalogService.GetFacility(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"facility": toFacilityResponse(facility)})
}

// SearchFacilities handles GET /api/parking/search
func (h *FacilityHandler) SearchFacilities(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		if q.Lat == nil || q.Lng == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude are required"})
			return
		}
		respondBindError(c, err)
		return
	}

	facilities, err := h.catalogService.SearchNearby(c.Request.Context(), service.SearchRequest{
		Latitude:  *q.Lat,
		Longitude: *q.Lng,
		RadiusKm:  q.Radius,
		Limit:     q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"facilities": toFacilityResponses(facilities),
		"count":      len(facilities),
	})
}

// SubmitReview handles POST /api/parking/facilities/:id/reviews
func (h *FacilityHandler) SubmitReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	facility, err := h.reviewService.SubmitReview(c.Request.Context(), service.SubmitReviewRequest{
		Principal:  p,
		FacilityID: c.Param("id"),
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"facility": FacilityReviewsResponse{
			ID:      facility.ID,
			Name:    facility.Name,
			Rating:  facility.Rating,
			Reviews: toReviewResponses(facility.Reviews),
		},
	})
}

// splitList accepts both repeated and comma separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
