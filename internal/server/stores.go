package server

import (
	"net/http"
	"strings"

	storedomain "github.com/Tejaramidi0118/parcel-management-sub000/internal/store/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) NearestStores(c *gin.Context) {
	var query struct {
		Lat      float64 `form:"lat"`
		Lng      float64 `form:"lng"`
		RadiusKm float64 `form:"radius_km,default=10"`
		Limit    int     `form:"limit,default=10"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.storeSvc.NearestStores(c.Request.Context(), storedomain.NearestStoresRequest{
		Latitude:  query.Lat,
		Longitude: query.Lng,
		RadiusKm:  query.RadiusKm,
		Limit:     query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) StoreAvailability(c *gin.Context) {
	resp, err := s.storeSvc.StoreAvailability(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
