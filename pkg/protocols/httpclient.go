package protocols

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

// Client is the connection pool shared by every worker of a run. It is safe
// for concurrent use without external locking; workers never build their own.
type Client struct {
	http *http.Client
	url  string
	body []byte
}

// NewClient builds the shared pool from cfg. Idle connections are kept per
// destination host, up to cfg.PoolMaxIdlePerHost. Bytes moved over the pooled
// connections are reported to tracker when it is not nil.
//
// With cfg.HTTP2 an https target negotiates HTTP/2 through ALPN and an http
// target is spoken to with cleartext HTTP/2 (h2c) over a single multiplexed
// connection.
func NewClient(cfg *Config, tracker ByteTracker) (*Client, error) {
	dial := dialContextWithBytesTracked(&net.Dialer{KeepAlive: 30 * time.Second}, tracker)
	client := &Client{url: cfg.URL, body: cfg.Body}

	if cfg.HTTP2 && strings.HasPrefix(cfg.URL, "http://") {
		client.http = &http.Client{Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dial(ctx, network, addr)
			},
		}}
		return client, nil
	}

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dial,
		MaxIdleConnsPerHost: cfg.PoolMaxIdlePerHost,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("configuring http2 transport: %w", err)
		}
	}
	client.http = &http.Client{Transport: tr}
	return client, nil
}

// Post sends the configured body to the configured URL and returns the status
// code and the latency, measured from just before sending until the response
// headers arrived. The response body is drained afterwards so the connection
// goes back to the pool; draining is not part of the latency.
// A non nil error means no response was received.
func (c *Client) Post(ctx context.Context) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(c.body))
	if err != nil {
		return 0, 0, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	latency := time.Since(start)
	defer resp.Body.Close()
	// a failed drain only costs the connection reuse, the status is known
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
