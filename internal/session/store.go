// Package session holds the bearer token and the authenticated user.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sikseb/internal/models"
	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/jwt"
	"sikseb/pkg/logger"

	"github.com/sirupsen/logrus"
)

const DefaultTokenKey = "auth_token"

// Transport is the part of apiclient.Client the store needs.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, body, out any, authed bool) error
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	User      *models.User
	Subject   string
	ExpiresAt *time.Time
}

type Store struct {
	tokens    TokenStore
	key       string
	transport Transport
	autoCreds models.LoginRequest
	log       logrus.FieldLogger

	mu      sync.RWMutex
	current *Session
	lastErr error
}

type Option func(*Store)

func WithTokenKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithAutoLoginCredentials overrides the bootstrap credential pair.
func WithAutoLoginCredentials(email, password string) Option {
	return func(s *Store) { s.autoCreds = models.LoginRequest{Email: email, Password: password} }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(tokens TokenStore, transport Transport, opts ...Option) *Store {
	s := &Store{
		tokens:    tokens,
		key:       DefaultTokenKey,
		transport: transport,
		autoCreds: models.LoginRequest{Email: "admin@example.com", Password: "password"},
		log:       logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAuthenticated is true iff a token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Token implements apiclient.Credentials.
func (s *Store) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.tokens.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Warn("cannot read stored token")
		return "", false
	}
	return token, ok
}

// Invalidate implements apiclient.Credentials; called on 401.
func (s *Store) Invalidate(ctx context.Context) {
	if err := s.tokens.Delete(ctx, s.key); err != nil {
		s.log.WithError(err).Warn("cannot clear stored token")
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Login exchanges credentials for a token and stores it. Backend error
// messages are passed through unchanged.
func (s *Store) Login(ctx context.Context, creds models.LoginRequest) (*Session, error) {
	var resp models.LoginResponse
	if err := s.transport.Do(ctx, http.MethodPost, "/api/login", creds, &resp, false); err != nil {
		s.setErr(err)
		return nil, err
	}
	if resp.Token == "" {
		err := apperrors.Authentication("Login gagal: backend tidak mengirim token", nil)
		s.setErr(err)
		return nil, err
	}

	if err := s.tokens.Set(ctx, s.key, resp.Token); err != nil {
		err = apperrors.Authentication("Token tidak dapat disimpan", err)
		s.setErr(err)
		return nil, err
	}

	sess := &Session{Token: resp.Token, User: &resp.User}
	if claims, err := jwt.PeekClaims(resp.Token); err == nil {
		sess.Subject = claims.Subject
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			sess.ExpiresAt = &exp
		}
	}

	s.mu.Lock()
	s.current = sess
	s.lastErr = nil
	s.mu.Unlock()

	s.log.WithField("email", creds.Email).Info("logged in")
	return sess, nil
}

// AutoLogin logs in with the fixed bootstrap credentials. Calling it while
// already authenticated simply replaces the stored token.
func (s *Store) AutoLogin(ctx context.Context) (*Session, error) {
	s.log.WithField("email", s.autoCreds.Email).Debug("auto login")
	return s.Login(ctx, s.autoCreds)
}

// Logout clears the stored token and session state. No network call is made.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.lastErr = nil
	s.mu.Unlock()
	return s.tokens.Delete(ctx, s.key)
}

// Current returns the session established in this process, if any.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LastError is the message of the most recent failed login, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.log.WithError(err).Warn("login failed")
}
