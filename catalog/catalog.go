// Package catalog talks to the Spotify Web API: it obtains an application
// access token through the client-credentials flow and looks recordings up by
// ISRC.
package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// Recording is a catalog search result, detached from the provider's wire
// format.
type Recording struct {
	Code       string
	Title      string
	ImageURL   string
	Popularity int
	Artists    []string
}

type Options struct {
	ClientID     string
	ClientSecret string
	// TokenURL defaults to spotify.TokenURL.
	TokenURL string
	// RateLimit is requests per second; 0 means unlimited.
	RateLimit float64
	// HTTPClient is used for both the token exchange and API calls.
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type Client struct {
	credentials *clientcredentials.Config
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *logrus.Entry
}

func New(opts Options) *Client {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotify.TokenURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		credentials: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		log:        logger.WithField("component", "catalog"),
	}
}

// AccessToken exchanges the client credentials for an access token. Any
// failure is logged and reported as a nil token.
func (c *Client) AccessToken(ctx context.Context) *oauth2.Token {
	token, err := c.credentials.Token(c.withHTTPClient(ctx))
	if err != nil {
		c.log.WithContext(ctx).WithError(err).Error("failed to get Spotify API token")
		return nil
	}
	return token
}

// LookupByCode runs a single track search filtered by ISRC.
func (c *Client) LookupByCode(ctx context.Context, code string, token *oauth2.Token) ([]Recording, error) {
	if token == nil {
		return nil, fmt.Errorf("no access token")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	client := spotify.NewClient(oauth2.NewClient(c.withHTTPClient(ctx), oauth2.StaticTokenSource(token)))

	results, err := client.Search("isrc:"+code, spotify.SearchTypeTrack)
	if err != nil {
		return nil, fmt.Errorf("failed to search for track: %w", err)
	}

	if results.Tracks == nil {
		return nil, nil
	}

	recordings := make([]Recording, 0, len(results.Tracks.Tracks))
	for _, t := range results.Tracks.Tracks {
		recordings = append(recordings, fromFullTrack(code, t))
	}
	return recordings, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func fromFullTrack(code string, t spotify.FullTrack) Recording {
	r := Recording{
		Code:       code,
		Title:      t.Name,
		Popularity: t.Popularity,
		Artists:    make([]string, 0, len(t.Artists)),
	}
	if len(t.Album.Images) > 0 {
		r.ImageURL = t.Album.Images[0].URL
	}
	for _, a := range t.Artists {
		r.Artists = append(r.Artists, a.Name)
	}
	return r
}

// MostPopular picks the recording with the highest popularity. On a tie the
// earlier one wins. ok is false for an empty slice.
func MostPopular(recordings []Recording) (best Recording, ok bool) {
	if len(recordings) == 0 {
		return Recording{}, false
	}
	best = recordings[0]
	for _, r := range recordings[1:] {
		if r.Popularity > best.Popularity {
			best = r
		}
	}
	return best, true
}
