package models

import "time"

// Track is keyed by its ISRC; a code is stored at most once.
type Track struct {
	ISRC      string    `json:"isrc" gorm:"column:isrc;primaryKey;size:32"`
	ImageURI  string    `json:"imageUri" gorm:"column:image_uri;size:512"`
	Title     string    `json:"title" gorm:"size:255"`
	Artists   []Artist  `json:"artists" gorm:"foreignKey:TrackISRC;references:ISRC"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Artist struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;index"`
	TrackISRC string    `json:"trackIsrc" gorm:"column:track_isrc;size:32;not null;index"`
	Track     *Track    `json:"-" gorm:"foreignKey:TrackISRC;references:ISRC"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TrackSummary is the projection returned by artist search.
type TrackSummary struct {
	ISRC     string `json:"isrc" gorm:"column:isrc"`
	ImageURI string `json:"imageUri" gorm:"column:image_uri"`
	Title    string `json:"title" gorm:"column:title"`
}
