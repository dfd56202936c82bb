// Package router registers the API routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/rental-api/internal/handler"
)

// RegisterRoutes registers the health check at /healthz and every resource
// under /api/v1. Trailing slashes are accepted on all of them.
func RegisterRoutes(e *echo.Echo, h *handler.Handler) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.GET("/healthz", h.Health)

	v1 := e.Group("/api/v1")
	v1.GET("/status", h.Status)
	v1.GET("/stats", h.Stats)

	v1.GET("/states", h.ListStates)
	v1.POST("/states", h.CreateState)
	v1.GET("/states/:state_id", h.GetState)
	v1.PUT("/states/:state_id", h.UpdateState)
	v1.DELETE("/states/:state_id", h.DeleteState)

	v1.GET("/states/:state_id/cities", h.ListCities)
	v1.POST("/states/:state_id/cities", h.CreateCity)
	v1.GET("/cities/:city_id", h.GetCity)
	v1.PUT("/cities/:city_id", h.UpdateCity)
	v1.DELETE("/cities/:city_id", h.DeleteCity)

	v1.GET("/amenities", h.ListAmenities)
	v1.POST("/amenities", h.CreateAmenity)
	v1.GET("/amenities/:amenity_id", h.GetAmenity)
	v1.PUT("/amenities/:amenity_id", h.UpdateAmenity)
	v1.DELETE("/amenities/:amenity_id", h.DeleteAmenity)

	v1.GET("/users", h.ListUsers)
	v1.POST("/users", h.CreateUser)
	v1.GET("/users/:user_id", h.GetUser)
	v1.PUT("/users/:user_id", h.UpdateUser)
	v1.DELETE("/users/:user_id", h.DeleteUser)

	v1.GET("/cities/:city_id/places", h.ListPlaces)
	v1.POST("/cities/:city_id/places", h.CreatePlace)
	v1.GET("/places/:place_id", h.GetPlace)
	v1.PUT("/places/:place_id", h.UpdatePlace)
	v1.DELETE("/places/:place_id", h.DeletePlace)
	v1.POST("/places_search", h.SearchPlaces)

	v1.GET("/places/:place_id/reviews", h.ListReviews)
	v1.POST("/places/:place_id/reviews", h.CreateReview)
	v1.GET("/reviews/:review_id", h.GetReview)
	v1.PUT("/reviews/:review_id", h.UpdateReview)
	v1.DELETE("/reviews/:review_id", h.DeleteReview)

	v1.GET("/places/:place_id/amenities", h.ListPlaceAmenities)
	v1.POST("/places/:place_id/amenities/:amenity_id", h.LinkPlaceAmenity)
	v1.DELETE("/places/:place_id/amenities/:amenity_id", h.UnlinkPlaceAmenity)
}
