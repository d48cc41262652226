package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// doRequest executes one HTTP exchange against a provider API, honoring the
// context deadline when one is set and falling back to the client timeout.
func doRequest(ctx context.Context, client *fasthttp.Client, method, url string, body []byte, timeout time.Duration) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if len(body) > 0 {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, 0, fmt.Errorf("failed to execute request to %s: %w", url, err)
		}
	} else {
		if err := client.DoTimeout(req, resp, timeout); err != nil {
			return nil, 0, fmt.Errorf("failed to execute request to %s with default timeout: %w", url, err)
		}
	}

	// Body is pooled by fasthttp, copy before releasing the response.
	raw := make([]byte, len(resp.Body()))
	copy(raw, resp.Body())
	return raw, resp.StatusCode(), nil
}
