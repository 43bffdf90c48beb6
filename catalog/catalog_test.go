package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/faizan/spotify-tracks/testutil"
	"golang.org/x/oauth2"
)

const searchBody = `{
  "tracks": {
    "href": "https://api.spotify.com/v1/search?query=isrc%3AGBAYE0601498&type=track",
    "items": [
      {
        "name": "Yesterday - Remastered",
        "popularity": 71,
        "artists": [{"name": "The Beatles"}],
        "album": {"name": "Help!", "images": [{"url": "https://i.scdn.co/image/help", "height": 640, "width": 640}]}
      },
      {
        "name": "Yesterday",
        "popularity": 78,
        "artists": [{"name": "The Beatles"}, {"name": "George Martin"}],
        "album": {"name": "1", "images": [{"url": "https://i.scdn.co/image/one", "height": 640, "width": 640}]}
      }
    ],
    "limit": 20,
    "offset": 0,
    "total": 2
  }
}`

type fakeSpotify struct {
	t          *testing.T
	tokenCalls atomic.Int32
	searchHits atomic.Int32
	tokenFails bool
	body       string
}

func (f *fakeSpotify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/token":
		f.tokenCalls.Add(1)
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
		if r.Header.Get("Authorization") != want {
			f.t.Errorf("expected basic auth header %q, got %q", want, r.Header.Get("Authorization"))
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			f.t.Errorf("expected client_credentials grant, got %v", r.PostForm)
		}
		if f.tokenFails {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"app-token","token_type":"Bearer","expires_in":3600}`)
	case "/v1/search":
		f.searchHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer app-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"status":401,"message":"Invalid access token"}}`)
			return
		}
		if q := r.URL.Query().Get("q"); !strings.HasPrefix(q, "isrc:") {
			f.t.Errorf("expected isrc query, got %q", q)
		}
		if typ := r.URL.Query().Get("type"); typ != "track" {
			f.t.Errorf("expected type=track, got %q", typ)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.body)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSpotify) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return New(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		HTTPClient:   testutil.RewriteClient(t, srv.URL),
		Logger:       testutil.DiscardLogger(),
	})
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("AccessToken", func(t *testing.T) {
		fake := &fakeSpotify{t: t, body: searchBody}
		c := newTestClient(t, fake)

		token := c.AccessToken(ctx)
		if token == nil {
			t.Fatal("expected a token")
		}
		if token.AccessToken != "app-token" {
			t.Errorf("expected app-token, got %s", token.AccessToken)
		}
	})

	t.Run("AccessTokenFailure", func(t *testing.T) {
		fake := &fakeSpotify{t: t, tokenFails: true}
		c := newTestClient(t, fake)

		if token := c.AccessToken(ctx); token != nil {
			t.Errorf("expected nil token, got %+v", token)
		}
		if fake.tokenCalls.Load() == 0 {
			t.Error("expected the token endpoint to be called")
		}
	})

	t.Run("LookupByCode", func(t *testing.T) {
		fake := &fakeSpotify{t: t, body: searchBody}
		c := newTestClient(t, fake)

		recs, err := c.LookupByCode(ctx, "GBAYE0601498", c.AccessToken(ctx))
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("expected 2 recordings, got %d", len(recs))
		}

		second := recs[1]
		if second.Title != "Yesterday" || second.Popularity != 78 {
			t.Errorf("unexpected recording %+v", second)
		}
		if second.ImageURL != "https://i.scdn.co/image/one" {
			t.Errorf("unexpected image %s", second.ImageURL)
		}
		if len(second.Artists) != 2 || second.Artists[1] != "George Martin" {
			t.Errorf("unexpected artists %v", second.Artists)
		}
		if second.Code != "GBAYE0601498" {
			t.Errorf("expected code to be carried over, got %s", second.Code)
		}
	})

	t.Run("LookupByCodeNoResults", func(t *testing.T) {
		fake := &fakeSpotify{t: t, body: `{"tracks":{"href":"","items":[],"limit":20,"offset":0,"total":0}}`}
		c := newTestClient(t, fake)

		recs, err := c.LookupByCode(ctx, "XX0000000000", c.AccessToken(ctx))
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("expected no recordings, got %+v", recs)
		}
	})

	t.Run("LookupByCodeRejectedToken", func(t *testing.T) {
		fake := &fakeSpotify{t: t, body: searchBody}
		c := newTestClient(t, fake)

		_, err := c.LookupByCode(ctx, "GBAYE0601498", &oauth2.Token{AccessToken: "stale", TokenType: "Bearer"})
		if err == nil {
			t.Error("expected an error for a rejected token")
		}
	})

	t.Run("LookupByCodeNilToken", func(t *testing.T) {
		fake := &fakeSpotify{t: t, body: searchBody}
		c := newTestClient(t, fake)

		if _, err := c.LookupByCode(ctx, "GBAYE0601498", nil); err == nil {
			t.Error("expected an error for a nil token")
		}
		if fake.searchHits.Load() != 0 {
			t.Error("search endpoint should not be called without a token")
		}
	})
}

func TestMostPopular(t *testing.T) {
	tests := []struct {
		name      string
		in        []Recording
		wantTitle string
		wantOK    bool
	}{
		{name: "Empty", in: nil, wantOK: false},
		{name: "Single", in: []Recording{{Title: "a", Popularity: 1}}, wantTitle: "a", wantOK: true},
		{
			name:      "Highest",
			in:        []Recording{{Title: "a", Popularity: 10}, {Title: "b", Popularity: 90}, {Title: "c", Popularity: 50}},
			wantTitle: "b",
			wantOK:    true,
		},
		{
			name:      "TieKeepsFirst",
			in:        []Recording{{Title: "a", Popularity: 5}, {Title: "b", Popularity: 70}, {Title: "c", Popularity: 70}},
			wantTitle: "b",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MostPopular(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("expected %q, got %q", tt.wantTitle, got.Title)
			}
		})
	}
}
