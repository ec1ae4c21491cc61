package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/soochol/medsum/internal/medsum"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p medsum.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated identity stored by requireAuth.
func PrincipalFrom(ctx context.Context) (medsum.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(medsum.Principal)
	return p, ok
}

// requireAuth accepts a bearer JWT or, failing that, an X-API-Key header.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var (
			p   medsum.Principal
			err error
		)
		if token, ok := bearerToken(r); ok {
			p, err = s.auth.VerifyToken(ctx, token)
		} else if key := r.Header.Get("X-API-Key"); key != "" {
			p, err = s.auth.ResolveAPIKey(ctx, key)
		} else {
			s.writeError(w, medsum.NewUnauthorized("No authentication token provided"), "")
			return
		}
		if err != nil {
			s.writeError(w, err, "Authentication failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, p)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Data   struct {
		User *medsum.User `json:"user"`
	} `json:"data"`
}

func newAuthResponse(u *medsum.User, token string) authResponse {
	resp := authResponse{Status: "success", Token: token}
	resp.Data.User = u
	return resp
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, medsum.NewBadRequest("Invalid request body")
	}
	return c, nil
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	user, token, err := s.auth.Signup(r.Context(), c.Name, c.Email, c.Password)
	if err != nil {
		s.writeError(w, err, "Signup failed")
		return
	}
	writeJSON(w, http.StatusCreated, newAuthResponse(user, token))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	user, token, err := s.auth.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		s.writeError(w, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(user, token))
}
