// Package testbackend serves a fake BrightPath REST API for tests.
package testbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// User is an account known to the fake backend. Role is sent exactly as set,
// so tests can exercise normalisation with values like "INSTRUCTOR".
type User struct {
	Username string
	Password string
	Email    string
	Role     string
}

// Call is one request the backend received. Path is relative to the API root.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          map[string]any
}

const apiRoot = "/api"

// Response overrides an endpoint's normal behaviour.
type Response struct {
	Status int
	Body   string
}

// ResetGrant is a uidb64/token pair the reset endpoint accepts.
type ResetGrant struct {
	UserIDEncoded string
	Token         string
}

// Backend is an httptest server speaking the BrightPath auth API under /api.
type Backend struct {
	server *httptest.Server

	mu        sync.Mutex
	users     map[string]User
	tokens    map[string]string // access token -> username
	grants    map[ResetGrant]string
	overrides map[string]Response
	calls     []Call
	issued    int

	// BeforeProfile runs before the profile endpoint answers. Tests use it
	// to hold a response back.
	BeforeProfile func(r *http.Request)
}

// New starts a backend that is closed when the test ends.
func New(t *testing.T, users ...User) *Backend {
	t.Helper()
	b := &Backend{
		users:     make(map[string]User),
		tokens:    make(map[string]string),
		grants:    make(map[ResetGrant]string),
		overrides: make(map[string]Response),
	}
	for _, u := range users {
		b.users[u.Username] = u
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Route(apiRoot+"/auth", func(r chi.Router) {
		r.Post("/token/", b.handleToken)
		r.Get("/profile/", b.handleProfile)
		r.Post("/register/", b.handleRegister)
		r.Post("/forgot-password/", b.handleForgotPassword)
		r.Post("/reset-password/", b.handleResetPassword)
	})

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL is the API root to hand to apiclient.New.
func (b *Backend) URL() string {
	return b.server.URL + apiRoot
}

// Close stops the server; later calls fail at the transport level.
func (b *Backend) Close() {
	b.server.Close()
}

// Override makes path (relative to the API root) answer with resp until cleared.
func (b *Backend) Override(path string, resp Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[path] = resp
}

// ClearOverride restores the normal handler for path.
func (b *Backend) ClearOverride(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overrides, path)
}

// SetRole changes a user's role as reported by the profile endpoint.
func (b *Backend) SetRole(username, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[username]
	u.Role = role
	b.users[username] = u
}

// RevokeAll invalidates every issued access token.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]string)
}

// IssueToken returns a valid access token for username without a login call.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	access, _ := b.issueLocked(username)
	return access
}

// GrantReset makes the reset endpoint accept grant for username.
func (b *Backend) GrantReset(grant ResetGrant, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grants[grant] = username
}

// User returns the stored account.
func (b *Backend) User(username string) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	return u, ok
}

// Calls returns the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallsTo counts requests to path.
func (b *Backend) CallsTo(path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) issueLocked(username string) (string, string) {
	b.issued++
	access := fmt.Sprintf("access-%s-%d", username, b.issued)
	refresh := fmt.Sprintf("refresh-%s-%d", username, b.issued)
	b.tokens[access] = username
	return access, refresh
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, apiRoot)
		call := Call{
			Method:        r.Method,
			Path:          path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		}
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &call.Body)
			r.Body = io.NopCloser(strings.NewReader(string(data)))
		}

		b.mu.Lock()
		b.calls = append(b.calls, call)
		override, ok := b.overrides[path]
		b.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(override.Status)
			_, _ = io.WriteString(w, override.Body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[req.Username]
	if !ok || u.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "No active account found with the given credentials",
		})
		return
	}
	access, refresh := b.issueLocked(u.Username)
	writeJSON(w, http.StatusOK, map[string]any{"access": access, "refresh": refresh})
}

func (b *Backend) handleProfile(w http.ResponseWriter, r *http.Request) {
	if b.BeforeProfile != nil {
		b.BeforeProfile(r)
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Authentication credentials were not provided.",
		})
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.tokens[token]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}
	u := b.users[username]
	writeJSON(w, http.StatusOK, map[string]any{"username": u.Username, "role": u.Role})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request."})
		return
	}

	fieldErrors := map[string][]string{}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Username]; exists {
		fieldErrors["username"] = []string{"A user with that username already exists."}
	}
	if req.Password != req.Password2 {
		fieldErrors["password"] = []string{"Password fields didn't match."}
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	b.users[req.Username] = User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     "INSTRUCTOR",
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"detail": "User registered successfully. Please check your email to verify your account.",
	})
}

func (b *Backend) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == req.Email {
			writeJSON(w, http.StatusOK, map[string]any{"detail": "Password reset link sent."})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "User with this email does not exist."})
}

func (b *Backend) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UIDB64   string `json:"uidb64"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	grant := ResetGrant{UserIDEncoded: req.UIDB64, Token: req.Token}
	username, ok := b.grants[grant]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid or expired token."})
		return
	}
	delete(b.grants, grant)
	u := b.users[username]
	u.Password = req.Password
	b.users[username] = u
	writeJSON(w, http.StatusOK, map[string]any{"detail": "Password has been reset successfully."})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
