package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateTrack godoc
// @Summary Creates a new track
// @Description Uses an ISRC to fetch data from Spotify and saves the most popular match with its artists.
// @Tags tracks
// @Produce json
// @Security bearerAuth
// @Param isrc path string true "International Standard Recording Code of the track"
// @Success 200 {object} models.Track
// @Failure 400 {object} ErrorResponse "Track already exists"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tracks/{isrc} [post]
func (h *Handler) CreateTrack(c *gin.Context) {
	track, err := h.tracks.CreateTrack(c.Request.Context(), c.Param("isrc"))
	if err != nil {
		h.respondError(c, err, "No track")
		return
	}

	c.JSON(http.StatusOK, track)
}

// GetByISRC godoc
// @Summary Get track details by ISRC
// @Description Retrieves a stored track and its artists by ISRC.
// @Tags tracks
// @Produce json
// @Security bearerAuth
// @Param isrc path string true "International Standard Recording Code of the track"
// @Success 200 {object} models.Track
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tracks/{isrc} [get]
func (h *Handler) GetByISRC(c *gin.Context) {
	track, err := h.tracks.GetTrack(c.Request.Context(), c.Param("isrc"))
	if err != nil {
		h.respondError(c, err, "Track not found")
		return
	}

	c.JSON(http.StatusOK, track)
}

// GetByArtistName godoc
// @Summary Get tracks by artist name
// @Description Retrieves stored tracks with an artist whose name contains the given text, ignoring case.
// @Tags tracks
// @Produce json
// @Security bearerAuth
// @Param artist path string true "Part of the artist name"
// @Success 200 {array} models.TrackSummary
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /artists/{artist} [get]
func (h *Handler) GetByArtistName(c *gin.Context) {
	summaries, err := h.tracks.SearchByArtist(c.Request.Context(), c.Param("artist"))
	if err != nil {
		h.respondError(c, err, "No tracks found for the artist")
		return
	}

	c.JSON(http.StatusOK, summaries)
}
