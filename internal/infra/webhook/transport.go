package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"wiki-notify/internal/config"
)

// streamChunkSize is the write size of the streaming transport. Bodies larger
// than this are sent in several chunks.
const streamChunkSize = 4096

// poster performs one POST of an already encoded JSON body.
type poster interface {
	post(ctx context.Context, endpoint string, body []byte) (*http.Response, error)
}

// libraryPoster posts through a pooled client with a buffered body.
type libraryPoster struct {
	client *http.Client
}

func (p *libraryPoster) post(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.client.Do(req)
}

// streamingPoster opens a fresh connection per request and streams the body
// through a pipe, so it goes out with chunked transfer encoding.
type streamingPoster struct {
	client *http.Client
}

func (p *streamingPoster) post(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	pr, pw := io.Pipe()
	go func() {
		for rest := body; len(rest) > 0; {
			n := min(len(rest), streamChunkSize)
			if _, err := pw.Write(rest[:n]); err != nil {
				return
			}
			rest = rest[n:]
		}
		_ = pw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	return resp, nil
}

// newPoster builds the transport selected by cfg.Method.
func newPoster(cfg config.WebhookConfig) (poster, error) {
	var transport *http.Transport
	switch cfg.Method {
	case config.SendMethodStreaming:
		transport = cleanhttp.DefaultTransport()
	case config.SendMethodLibrary, "":
		transport = cleanhttp.DefaultPooledTransport()
	default:
		return nil, fmt.Errorf("unknown send method %q", cfg.Method)
	}

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if cfg.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402 -- operator opt-in
	}

	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Transport: transport, Timeout: timeout}

	if cfg.Method == config.SendMethodStreaming {
		return &streamingPoster{client: client}, nil
	}
	return &libraryPoster{client: client}, nil
}
