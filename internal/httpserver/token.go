// internal/httpserver/token.go
//
// Session tokens.
// A token is an HS256 JWT whose subject is the session id. Holding the token
// is what lets a client drive that session; there are no user accounts.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/turing/internal/store"
)

const issuerName = "turing"

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
	errWrongSession = errors.New("token does not belong to this game")
)

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// sign issues a token for session id.
func (t tokenIssuer) sign(id string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// verify checks signature, issuer and expiry and returns the session id.
func (t tokenIssuer) verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

func bearer(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

type ctxSessionKey struct{}

// requireSession resolves {id} to a live session and checks that the bearer
// token was issued for it.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			writeError(w, errMissingToken, nil)
			return
		}
		sub, err := s.tokens.verify(raw)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		id := chi.URLParam(r, "id")
		if sub != id {
			writeError(w, errWrongSession, nil)
			return
		}
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}
