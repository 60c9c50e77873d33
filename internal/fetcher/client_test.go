package fetcher

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testClient() *Client {
	return NewClient(ClientOptions{Timeout: time.Second, RequestsPerSecond: 1000, Burst: 100}, noopLogger())
}

func TestClientSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Encoding")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body: got %q", body)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("User-Agent: got %q", gotUA)
	}
	if gotAccept != "gzip, br" {
		t.Fatalf("Accept-Encoding: got %q", gotAccept)
	}
}

func TestClientRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := testClient().Get(context.Background(), srv.URL); err == nil {
		t.Fatal("HTTP 403 应返回错误")
	}
}

func TestClientInflatesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html>compressed page</html>"))
		_ = gz.Close()
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "<html>compressed page</html>" {
		t.Fatalf("gzip 解压结果不正确: %q", body)
	}
}

func TestClientInflatesBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		br := brotli.NewWriter(w)
		_, _ = br.Write([]byte("<html>br page</html>"))
		_ = br.Close()
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "<html>br page</html>" {
		t.Fatalf("brotli 解压结果不正确: %q", body)
	}
}
