package linkpreview

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_OpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
<title>Fallback title</title>
<meta property="og:title" content=" Learn Spanish fast ">
<meta property="og:description" content="Ten tips">
<meta property="og:image" content="/img/cover.png">
</head><body></body></html>`)
	}))
	defer srv.Close()

	p, err := newPreviewer(true).Fetch(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/post", p.URL)
	assert.Equal(t, "Learn Spanish fast", p.Title)
	assert.Equal(t, "Ten tips", p.Description)
	assert.Equal(t, srv.URL+"/img/cover.png", p.Image)
}

func TestFetch_Fallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Plain page</title>
<meta name="description" content="Just a page"></head></html>`)
	}))
	defer srv.Close()

	p, err := newPreviewer(true).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Plain page", p.Title)
	assert.Equal(t, "Just a page", p.Description)
	assert.Empty(t, p.Image)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newPreviewer(true).Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "bad status 404")
}

func TestFetch_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "javascript:alert(1)", "/relative", "http://"} {
		_, err := NewPreviewer().Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestFetch_LegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9 con leche</title></head></html>"))
	}))
	defer srv.Close()

	p, err := newPreviewer(true).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café con leche", p.Title)
}

func TestFetch_RefusesPrivateAddresses(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `<html><head><title>internal</title></head></html>`)
	}))
	defer srv.Close()

	_, err := NewPreviewer().Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.Zero(t, hits)
}

func TestPublicOnly(t *testing.T) {
	blocked := []string{
		"127.0.0.1:80", "[::1]:443", "10.1.2.3:80", "172.16.0.1:80", "192.168.1.1:80",
		"169.254.169.254:80", "100.64.0.1:80", "0.0.0.0:80", "[::ffff:127.0.0.1]:80", "[fe80::1]:80",
	}
	for _, addr := range blocked {
		assert.ErrorIs(t, publicOnly("tcp", addr, nil), ErrBlockedAddress, addr)
	}
	for _, addr := range []string{"93.184.216.34:443", "[2606:2800:220:1:248:1893:25c8:1946]:80"} {
		assert.NoError(t, publicOnly("tcp", addr, nil), addr)
	}
}
