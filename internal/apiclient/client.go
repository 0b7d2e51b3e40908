// Package apiclient is the JSON transport to the HR backend.
package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// Credentials supplies the bearer token and is told when the backend rejects it.
type Credentials interface {
	Token(ctx context.Context) (string, bool)
	Invalidate(ctx context.Context)
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	creds   Credentials
	log     logrus.FieldLogger
}

type Option func(*Client)

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for baseURL, e.g. "http://localhost:8000".
// Redirects are never followed.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "sikseb-roleadmin",
			MaxIdleConnDuration: 90 * time.Second,
		},
		log: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentials attaches the token source after construction; the session
// store and the client reference each other.
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, true)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, true)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, true)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, true)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, true)
}

// Do sends one request and decodes a 2xx JSON body into out. With authed set,
// the bearer token is attached when one is stored. Every failure is an *errors.Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, authed bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + endpoint)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-Id", uuid.NewString())

	hasToken := false
	if authed && c.creds != nil {
		if token, ok := c.creds.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
			hasToken = true
		}
	}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Validation("", "Data permintaan tidak valid: "+err.Error())
		}
		req.SetBody(payload)
	}

	log := c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   endpoint,
		"token":  presence(hasToken),
	})

	if err := ctx.Err(); err != nil {
		return apperrors.BackendUnavailable(c.baseURL, err)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		log.WithError(err).Warn("backend request failed")
		return apperrors.BackendUnavailable(c.baseURL, err)
	}

	status := resp.StatusCode()
	log = log.WithFields(logrus.Fields{"status": status, "duration": time.Since(start)})
	log.Debug("backend request")

	if status >= 300 && status < 400 {
		location := string(resp.Header.Peek("Location"))
		log.WithField("location", location).Error("backend answered with a redirect")
		return apperrors.RedirectMisconfiguration(status, endpoint, location)
	}

	if status >= 400 {
		var env response.MessageEnvelope
		_ = json.Unmarshal(resp.Body(), &env)
		log.WithField("message", env.Message).Warn("backend rejected request")

		switch status {
		case http.StatusUnauthorized:
			if c.creds != nil {
				c.creds.Invalidate(ctx)
			}
			if authed {
				return apperrors.Authentication("", nil)
			}
			return apperrors.Authentication(env.Message, nil)
		case http.StatusNotFound:
			if env.Message == "" {
				env.Message = "Endpoint tidak ditemukan. Silakan periksa konfigurasi backend."
			}
			return apperrors.Server(status, env.Message)
		default:
			return apperrors.Server(status, env.Message)
		}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		log.WithError(err).Error("cannot decode backend response")
		return &apperrors.Error{
			Kind:    apperrors.KindServer,
			Status:  status,
			Message: "Respons backend tidak dapat dibaca",
			Err:     err,
		}
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
