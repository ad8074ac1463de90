package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChainAppliesFirstMiddlewareOutermost(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	})

	rec := httptest.NewRecorder()
	Chain(handler, tag("outer"), tag("inner")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRecoveryMiddlewareConvertsPanicTo500(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddlewarePreservesStatus(t *testing.T) {
	handler := LoggingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

type stubValidator struct {
	sessionID string
	err       error
	lastToken string
}

func (s *stubValidator) ValidateToken(token string) (string, error) {
	s.lastToken = token
	if s.err != nil {
		return "", s.err
	}
	return s.sessionID, nil
}

func captureSessionID(t *testing.T, target *string, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*target, *found = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthWithHeader(t *testing.T) {
	var gotID string
	var found bool
	handler := SessionAuth(nil)(captureSessionID(t, &gotID, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "abc-123", gotID)
}

func TestSessionAuthMissingHeader(t *testing.T) {
	handler := SessionAuth(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthWithValidator(t *testing.T) {
	validator := &stubValidator{sessionID: "session-9"}
	var gotID string
	var found bool
	handler := SessionAuth(validator)(captureSessionID(t, &gotID, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer signed-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed-token", validator.lastToken)
	assert.Equal(t, "session-9", gotID)
}

func TestSessionAuthValidatorIgnoresPlainHeader(t *testing.T) {
	validator := &stubValidator{sessionID: "session-9"}
	handler := SessionAuth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "session-9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsBadToken(t *testing.T) {
	validator := &stubValidator{err: errors.New("invalid token")}
	handler := SessionAuth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalSessionAuthPassesThroughWithoutCredentials(t *testing.T) {
	var gotID string
	var found bool
	handler := OptionalSessionAuth(nil)(captureSessionID(t, &gotID, &found))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
	assert.Empty(t, gotID)
}

func TestOptionalSessionAuthResolvesHeader(t *testing.T) {
	var gotID string
	var found bool
	handler := OptionalSessionAuth(nil)(captureSessionID(t, &gotID, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, "abc-123", gotID)
}

func TestSessionIDFromContextEmptyContext(t *testing.T) {
	id, ok := SessionIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())

	assert.False(t, ok)
	assert.Empty(t, id)
}
