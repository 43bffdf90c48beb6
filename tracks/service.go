// Package tracks fetches recordings from the catalog, stores them and serves
// them back by ISRC or artist name.
package tracks

import (
	"context"
	"fmt"
	"strings"

	"github.com/faizan/spotify-tracks/apperr"
	"github.com/faizan/spotify-tracks/catalog"
	"github.com/faizan/spotify-tracks/models"
	"golang.org/x/oauth2"
)

// Catalog is the external lookup the service depends on.
type Catalog interface {
	AccessToken(ctx context.Context) *oauth2.Token
	LookupByCode(ctx context.Context, code string, token *oauth2.Token) ([]catalog.Recording, error)
}

// Store is the persistence the service depends on.
type Store interface {
	InsertTrackIfAbsent(ctx context.Context, track *models.Track) (bool, error)
	GetTrack(ctx context.Context, isrc string) (*models.Track, error)
	SearchTracksByArtist(ctx context.Context, query string) ([]models.TrackSummary, error)
}

type Service struct {
	catalog Catalog
	store   Store
}

func NewService(c Catalog, s Store) *Service {
	return &Service{catalog: c, store: s}
}

// CreateTrack looks isrc up in the catalog and stores the most popular match
// together with its artists.
func (s *Service) CreateTrack(ctx context.Context, isrc string) (*models.Track, error) {
	isrc = strings.TrimSpace(isrc)
	if isrc == "" {
		return nil, fmt.Errorf("%w: ISRC is required", apperr.ErrValidation)
	}

	token := s.catalog.AccessToken(ctx)
	if token == nil {
		return nil, fmt.Errorf("%w: no access token", apperr.ErrUpstream)
	}

	recordings, err := s.catalog.LookupByCode(ctx, isrc, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}

	best, ok := catalog.MostPopular(recordings)
	if !ok {
		return nil, fmt.Errorf("%w: no track for ISRC %s", apperr.ErrNotFound, isrc)
	}

	track := &models.Track{
		ISRC:     isrc,
		ImageURI: best.ImageURL,
		Title:    best.Title,
		Artists:  make([]models.Artist, 0, len(best.Artists)),
	}
	for _, name := range best.Artists {
		track.Artists = append(track.Artists, models.Artist{Name: name})
	}

	inserted, err := s.store.InsertTrackIfAbsent(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}
	if !inserted {
		return nil, fmt.Errorf("%w: track %s", apperr.ErrConflict, isrc)
	}

	return s.store.GetTrack(ctx, isrc)
}

// GetTrack returns the stored track with its artists.
func (s *Service) GetTrack(ctx context.Context, isrc string) (*models.Track, error) {
	return s.store.GetTrack(ctx, strings.TrimSpace(isrc))
}

// SearchByArtist returns every stored track with an artist whose name
// contains query, case-insensitively.
func (s *Service) SearchByArtist(ctx context.Context, query string) ([]models.TrackSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: no artist name given", apperr.ErrNotFound)
	}

	summaries, err := s.store.SearchTracksByArtist(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrServer, err)
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: no tracks found for artist %q", apperr.ErrNotFound, query)
	}
	return summaries, nil
}
