package badge

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Result is the typed outcome of inlining one image. A missing image is a
// normal value, not an error: a broken sponsor logo must never block badge
// issuance.
type Result struct {
	URI string
}

// Missing reports whether the image could not be made embeddable.
func (r Result) Missing() bool { return r.URI == "" }

// Ok wraps an embeddable data URI.
func Ok(uri string) Result { return Result{URI: uri} }

// MissingResult is the zero Result, returned on total failure.
var MissingResult = Result{}

// fetchBudget bounds the whole fallback chain for one image.
const fetchBudget = 8 * time.Second

// maxImageBytes caps the payload accepted for inlining.
const maxImageBytes = 8 << 20

// Inliner turns external image URLs into embeddable data URIs with an
// ordered fallback chain. Safe for concurrent use; successful payloads are
// cached so repeated exports of the same event reuse flags and logos.
type Inliner struct {
	client *http.Client
	cache  *cache.Cache
}

func NewInliner() *Inliner {
	return &Inliner{
		client: &http.Client{Timeout: fetchBudget},
		cache:  cache.New(10*time.Minute, 15*time.Minute),
	}
}

// Inline resolves one URL to an embeddable data URI. It never returns an
// error: every failure mode degrades to MissingResult within the fetch
// deadline.
func (in *Inliner) Inline(ctx context.Context, src string) Result {
	if strings.TrimSpace(src) == "" {
		return MissingResult
	}
	if strings.HasPrefix(src, "data:") {
		return Ok(src)
	}

	key := fmt.Sprintf("img:%x", xxh3.HashString(src))
	if cached, found := in.cache.Get(key); found {
		return Ok(cached.(string))
	}

	ctx, cancel := context.WithTimeout(ctx, fetchBudget)
	defer cancel()

	// First attempt: plain fetch, body encoded as-is once it proves
	// decodable. A 200 with an image content type can still carry garbage,
	// and a poisoned data URI would fail the whole render downstream.
	if body, mime, err := in.fetch(ctx, src); err == nil {
		if _, err := imaging.Decode(bytes.NewReader(body)); err == nil {
			uri := dataURI(mime, body)
			in.cache.SetDefault(key, uri)
			return Ok(uri)
		}
	}

	// Second attempt: cache-busted re-fetch, then decode and re-encode to
	// PNG. This recovers images served with a bogus content type or a
	// stale negative cache, and normalizes webp/gif for the renderers.
	body, _, err := in.fetch(ctx, cacheBust(src))
	if err != nil {
		slog.Debug("image inline failed", slog.String("url", src), slog.String("error", err.Error()))
		return MissingResult
	}
	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		slog.Debug("image decode failed", slog.String("url", src), slog.String("error", err.Error()))
		return MissingResult
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return MissingResult
	}
	uri := dataURI("image/png", buf.Bytes())
	in.cache.SetDefault(key, uri)
	return Ok(uri)
}

// InlineAll fans out over the given URLs in parallel, preserving order.
// Images within one card have no ordering dependency on each other.
func (in *Inliner) InlineAll(ctx context.Context, srcs []string) []Result {
	results := make([]Result, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, src := range srcs {
		g.Go(func() error {
			results[i] = in.Inline(ctx, src)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
	return results
}

func (in *Inliner) fetch(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	res, err := in.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("empty body")
	}
	// A truncated image would make it through the decoders often enough to
	// poison the cache; refuse it outright.
	if len(body) > maxImageBytes {
		return nil, "", fmt.Errorf("body exceeds %d bytes", maxImageBytes)
	}

	mime := res.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", fmt.Errorf("not an image: %q", mime)
	}
	return body, mime, nil
}

// cacheBust appends a throwaway query parameter to defeat stale negative
// caching between the first and second attempt.
func cacheBust(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := u.Query()
	q.Set("gpcb", fmt.Sprintf("%d", time.Now().UnixNano()))
	u.RawQuery = q.Encode()
	return u.String()
}

func dataURI(mime string, body []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body)
}

// DecodeDataURI returns the raw bytes of a data URI produced by Inline.
// The renderers use it to hand payloads to the image decoders.
func DecodeDataURI(uri string) ([]byte, error) {
	i := strings.Index(uri, ";base64,")
	if !strings.HasPrefix(uri, "data:") || i < 0 {
		return nil, fmt.Errorf("not a base64 data uri")
	}
	return base64.StdEncoding.DecodeString(uri[i+len(";base64,"):])
}
