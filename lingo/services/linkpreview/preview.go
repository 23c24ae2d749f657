// lingo/services/linkpreview/preview.go
package linkpreview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"lingo/lingo/utils/logging"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

var (
	ErrInvalidURL     = errors.New("url must be an absolute http(s) url")
	ErrBlockedAddress = errors.New("url resolves to a non-public address")
)

// carrier-grade NAT space is not covered by netip's IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

const maxPageBytes = 1 << 20

type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Previewer struct {
	client *http.Client
}

// NewPreviewer returns a Previewer that only connects to public addresses.
func NewPreviewer() *Previewer {
	return newPreviewer(false)
}

func newPreviewer(allowPrivate bool) *Previewer {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// a proxy would dial on our behalf and skip the address check
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &Previewer{client: &http.Client{Timeout: 5 * time.Second, Transport: transport}}
}

// publicOnly runs after DNS resolution, so it also covers redirects and
// hostnames pointing at internal addresses.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() || ip.IsUnspecified() || sharedAddressSpace.Contains(ip) {
		return ErrBlockedAddress
	}
	return nil
}

func parseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Fetch reads the page's OpenGraph tags, falling back to <title> and the
// description meta tag.
func (p *Previewer) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	defer logging.LogDuration(ctx, "link_preview_fetch")()

	target, err := parseTarget(rawURL)
	if err != nil {
		return Preview{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Preview{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; lingo-preview)")
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Preview{}, fmt.Errorf("fetch %s: bad status %d", target, resp.StatusCode)
	}

	// Pages declaring a legacy charset are decoded to UTF-8 before parsing.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return Preview{}, fmt.Errorf("decode %s: %w", target, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return Preview{}, fmt.Errorf("parse %s: %w", target, err)
	}

	preview := Preview{
		URL:         target.String(),
		Title:       firstNonEmpty(meta(doc, "og:title"), doc.Find("title").First().Text()),
		Description: firstNonEmpty(meta(doc, "og:description"), meta(doc, "description")),
		Image:       resolve(target, meta(doc, "og:image")),
	}
	return preview, nil
}

func meta(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop, _ := s.Attr("property")
		if prop == "" {
			prop, _ = s.Attr("name")
		}
		if strings.EqualFold(prop, name) {
			content, _ = s.Attr("content")
			return false
		}
		return true
	})
	return strings.TrimSpace(content)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// resolve makes a relative og:image absolute against the page url.
func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
