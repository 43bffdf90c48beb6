package handlers

import (
	"context"

	"github.com/faizan/spotify-tracks/auth"
	_ "github.com/faizan/spotify-tracks/docs"
	"github.com/faizan/spotify-tracks/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// AuthService registers users, logs them in and verifies bearer tokens.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// TrackService creates and reads stored tracks.
type TrackService interface {
	CreateTrack(ctx context.Context, isrc string) (*models.Track, error)
	GetTrack(ctx context.Context, isrc string) (*models.Track, error)
	SearchByArtist(ctx context.Context, query string) ([]models.TrackSummary, error)
}

type Handler struct {
	auth   AuthService
	tracks TrackService
	log    *logrus.Logger
}

func New(authSvc AuthService, trackSvc TrackService, logger *logrus.Logger) *Handler {
	return &Handler{auth: authSvc, tracks: trackSvc, log: logger}
}

// SetupRouter wires the public and bearer-protected routes.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.log), Recovery(h.log))

	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	protected := r.Group("/", JWTAuth(h.auth))
	protected.POST("/tracks/:isrc", h.CreateTrack)
	protected.GET("/tracks/:isrc", h.GetByISRC)
	protected.GET("/artists/:artist", h.GetByArtistName)

	return r
}
