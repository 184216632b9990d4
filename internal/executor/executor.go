package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/restsynth/internal/types"
)

// DefaultTimeout applies when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// TLSConfig holds client certificate and trust settings
type TLSConfig struct {
	CertFile           string
	KeyFile            string
	CAFile             string
	InsecureSkipVerify bool
}

// Options tune a single execution
type Options struct {
	Timeout time.Duration
	TLS     *TLSConfig
	// Client replaces the client built from Timeout and TLS
	Client *http.Client
}

// Execute sends req and captures the response. Transport failures are
// reported in RequestResult.Error; only an unusable request or client
// configuration returns an error.
func Execute(ctx context.Context, req types.RequestData, opts Options) (*types.RequestResult, error) {
	var bodyReader io.Reader
	requestSize := 0
	if req.Body != "" {
		bodyReader = strings.NewReader(req.Body)
		requestSize = len(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URI, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Duplicate header names are sent as repeated values
	for _, h := range req.Headers {
		if strings.EqualFold(h.Key, "Host") {
			httpReq.Host = h.Value
			continue
		}
		httpReq.Header.Add(h.Key, h.Value)
	}

	client := opts.Client
	if client == nil {
		client, err = buildHTTPClient(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
	}

	slog.Debug("executing request", "method", method, "uri", req.URI, "headers", len(req.Headers))
	startTime := time.Now()
	resp, err := client.Do(httpReq)
	duration := time.Since(startTime).Milliseconds()

	if err != nil {
		return &types.RequestResult{
			Error:       describeError(err),
			Duration:    duration,
			RequestSize: requestSize,
		}, nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	duration = time.Since(startTime).Milliseconds()
	if err != nil {
		return &types.RequestResult{
			Status:      resp.StatusCode,
			StatusText:  resp.Status,
			Error:       fmt.Sprintf("failed to read response body: %v", err),
			Duration:    duration,
			RequestSize: requestSize,
		}, nil
	}

	headers := make(map[string]string)
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	return &types.RequestResult{
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Headers:      headers,
		Body:         string(bodyBytes),
		Duration:     duration,
		RequestSize:  requestSize,
		ResponseSize: len(bodyBytes),
	}, nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "request canceled"
	}
	return err.Error()
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration
func buildHTTPClient(opts Options) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig := opts.TLS; tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Client certificate for mTLS
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
