// Package testutil contains shared testing utilities.
package testutil

import (
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/faizan/spotify-tracks/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database that is closed when the
// test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDB(config.DatabaseConfig{Driver: config.DriverSQLite, Name: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// RewriteTransport sends every request to Target, keeping path and query.
// It lets clients with hard-coded hosts talk to an httptest.Server.
type RewriteTransport struct {
	Target *url.URL
	Base   http.RoundTripper
}

func (rt *RewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.Target.Scheme
	r.URL.Host = rt.Target.Host
	r.Host = rt.Target.Host

	base := rt.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// RewriteClient returns an http.Client whose requests all land on target.
func RewriteClient(t *testing.T, target string) *http.Client {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("invalid target url %s: %v", target, err)
	}
	return &http.Client{Transport: &RewriteTransport{Target: u}}
}
