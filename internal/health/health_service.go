package health

import (
	"context"
	"io"
	"net/http"
	"time"
)

// probeService sends a GET to the service URL. Any HTTP response counts as
// reachable; the aggregation endpoint itself usually only accepts POST.
func probeService(ctx context.Context, opts Options) *ServiceInfo {
	info := &ServiceInfo{URL: opts.ServiceURL, Probed: true}

	ctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.ServiceURL, nil)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	if opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	info.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	info.Reachable = true
	info.StatusCode = resp.StatusCode
	return info
}
