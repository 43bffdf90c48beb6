// Package store persists users and catalog tracks through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/faizan/spotify-tracks/apperr"
	"github.com/faizan/spotify-tracks/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps an open database handle. It is created once at start and passed
// to the services; Close releases the connection pool.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateUser inserts user. A duplicate username yields apperr.ErrValidation.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q is taken", apperr.ErrValidation, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %q", apperr.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// InsertTrackIfAbsent stores track and its artists in one transaction. The
// track insert is a no-op when the code already exists, in which case nothing
// is written and inserted is false.
func (s *Store) InsertTrackIfAbsent(ctx context.Context, track *models.Track) (inserted bool, err error) {
	artists := track.Artists

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Track{
			ISRC:     track.ISRC,
			ImageURI: track.ImageURI,
			Title:    track.Title,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true

		if len(artists) == 0 {
			return nil
		}
		for i := range artists {
			artists[i].TrackISRC = track.ISRC
		}
		return tx.Create(&artists).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to store track metadata: %w", err)
	}
	return inserted, nil
}

// GetTrack loads a track with its artists.
func (s *Store) GetTrack(ctx context.Context, isrc string) (*models.Track, error) {
	var track models.Track
	err := s.db.WithContext(ctx).
		Preload("Artists", func(db *gorm.DB) *gorm.DB { return db.Order("artists.id") }).
		Where("isrc = ?", isrc).
		First(&track).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: track %q", apperr.ErrNotFound, isrc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track metadata: %w", err)
	}
	return &track, nil
}

// likeEscaper quotes LIKE wildcards with '!'. A backslash escape would be
// read as a string escape by MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchTracksByArtist returns each track with at least one artist whose name
// contains query, ignoring case. A track appears once however many of its
// artists match.
func (s *Store) SearchTracksByArtist(ctx context.Context, query string) ([]models.TrackSummary, error) {
	var summaries []models.TrackSummary
	err := s.db.WithContext(ctx).
		Model(&models.Track{}).
		Distinct("tracks.isrc", "tracks.image_uri", "tracks.title").
		Joins("JOIN artists ON artists.track_isrc = tracks.isrc").
		Where("LOWER(artists.name) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(query))+"%").
		Order("tracks.isrc").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tracks: %w", err)
	}
	return summaries, nil
}

// isUniqueViolation catches drivers that do not translate constraint errors
// into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
