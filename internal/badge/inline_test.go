package badge

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestInlinePlainFetch(t *testing.T) {
	payload := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	in := NewInliner()
	res := in.Inline(context.Background(), srv.URL+"/logo.png")
	if res.Missing() {
		t.Fatalf("expected inline to succeed")
	}
	if !strings.HasPrefix(res.URI, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix: %.40s", res.URI)
	}

	raw, err := DecodeDataURI(res.URI)
	if err != nil {
		t.Fatalf("decode data uri: %v", err)
	}
	if !bytes.Equal(raw, payload) {
		t.Fatalf("plain fetch must embed the body as-is")
	}
}

func TestInlineCacheBustFallback(t *testing.T) {
	payload := testPNG(t)
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		// The plain fetch is rejected; only the cache-busted retry
		// carrying the throwaway parameter succeeds.
		if r.URL.Query().Get("gpcb") == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	in := NewInliner()
	res := in.Inline(context.Background(), srv.URL+"/photo.png")
	if res.Missing() {
		t.Fatalf("expected fallback chain to recover")
	}
	if hits != 2 {
		t.Fatalf("expected exactly two fetch attempts, got %d", hits)
	}
	// The fallback path re-encodes to PNG regardless of origin type.
	if !strings.HasPrefix(res.URI, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri prefix: %.40s", res.URI)
	}
}

func TestInlineMissingIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	in := NewInliner()
	if res := in.Inline(context.Background(), srv.URL+"/gone.png"); !res.Missing() {
		t.Fatalf("expected missing result for unreachable image")
	}
	if res := in.Inline(context.Background(), ""); !res.Missing() {
		t.Fatalf("expected missing result for empty source")
	}
}

func TestInlineDataURIPassthrough(t *testing.T) {
	in := NewInliner()
	uri := "data:image/png;base64,AAAA"
	if res := in.Inline(context.Background(), uri); res.URI != uri {
		t.Fatalf("expected data uri passthrough, got %q", res.URI)
	}
}

func TestInlineRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a picture</html>"))
	}))
	defer srv.Close()

	in := NewInliner()
	if res := in.Inline(context.Background(), srv.URL+"/page"); !res.Missing() {
		t.Fatalf("expected non-image payload to degrade to missing")
	}
}

func TestInlineAllPreservesOrder(t *testing.T) {
	payload := testPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	in := NewInliner()
	results := in.InlineAll(context.Background(), []string{
		srv.URL + "/a.png",
		srv.URL + "/broken.png",
		srv.URL + "/c.png",
		"",
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Missing() || results[2].Missing() {
		t.Fatalf("expected reachable images to inline")
	}
	if !results[1].Missing() || !results[3].Missing() {
		t.Fatalf("expected broken and empty sources to stay missing in place")
	}
}

func TestInlineCachesSuccess(t *testing.T) {
	payload := testPNG(t)
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	in := NewInliner()
	src := srv.URL + "/flag.png"
	in.Inline(context.Background(), src)
	in.Inline(context.Background(), src)
	if hits != 1 {
		t.Fatalf("expected second inline to hit the cache, got %d fetches", hits)
	}
}

func TestInlineUndecodableBodyIsMissing(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("this is not a png at all"))
	}))
	defer srv.Close()

	in := NewInliner()
	res := in.Inline(context.Background(), srv.URL+"/photo.png")
	// A 200 with an image content type but a garbage body must degrade to
	// missing, never hand the renderers a poisoned data URI.
	if !res.Missing() {
		t.Fatalf("expected missing, got %.60s", res.URI)
	}
	if hits != 2 {
		t.Fatalf("expected plain fetch plus cache-busted retry, got %d hits", hits)
	}
}

func TestInlineOversizeBodyIsMissing(t *testing.T) {
	payload := bytes.Repeat([]byte{0xff}, maxImageBytes+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	in := NewInliner()
	res := in.Inline(context.Background(), srv.URL+"/huge.jpg")
	if !res.Missing() {
		t.Fatalf("expected oversize body to be refused, not truncated")
	}
}
