package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Probe outcomes.
const (
	ProbeSuccess  = "success"
	ProbeRedirect = "redirect"
	ProbeError    = "error"
)

type ProbeResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Probe checks that GET /api/roles is reachable without following redirects.
// It never returns an error; the outcome is in the result.
func (c *Client) Probe(ctx context.Context) ProbeResult {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/api/roles")
	req.Header.SetMethod(http.MethodGet)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.log.WithError(err).Warn("backend probe failed")
		return ProbeResult{
			Status:  ProbeError,
			Message: "Tidak dapat mengakses backend: " + err.Error(),
		}
	}

	status := resp.StatusCode()
	switch {
	case status >= 300 && status < 400:
		return ProbeResult{
			Status:  ProbeRedirect,
			Message: fmt.Sprintf("Backend mengembalikan redirect ke: %s. Endpoint /api/roles mungkin tidak tersedia.", resp.Header.Peek("Location")),
		}
	case status >= 200 && status < 300:
		return ProbeResult{Status: ProbeSuccess, Message: "Backend dapat diakses dengan baik."}
	default:
		return ProbeResult{
			Status:  ProbeError,
			Message: fmt.Sprintf("Backend error: %d %s", status, http.StatusText(status)),
		}
	}
}
