package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MayankGitHub86/solvehub-sub000/api"
	"github.com/MayankGitHub86/solvehub-sub000/internal/auth"
	"github.com/MayankGitHub86/solvehub-sub000/internal/models"
	"github.com/MayankGitHub86/solvehub-sub000/pkg/repository/mock"
)

func addUserWithPassword(t *testing.T, m *mock.Store, email, pw string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	id, err := m.CreateUser(ctx, &models.User{Name: "user", Email: email, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestAuthHandlers(t *testing.T) {
	tokens := auth.NewTokens("testsecret", time.Hour)

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(t *testing.T, m *mock.Store) int64
		wantStatus int
	}{
		{
			name:       "Signup_InvalidRequest",
			path:       "/signup",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Name",
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Email",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Password",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_Success",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusOK,
		},
		{
			name: "Signup_DuplicateEmail",
			path: "/signup",
			body: map[string]string{"name": "Dup", "email": "dup@example.com", "password": "pw"},
			prepare: func(t *testing.T, m *mock.Store) int64 {
				return addUserWithPassword(t, m, "dup@example.com", "pw")
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Signup_StoreFailure",
			path: "/signup",
			body: map[string]string{"name": "Err", "email": "err@example.com", "password": "pw"},
			prepare: func(t *testing.T, m *mock.Store) int64 {
				m.UserErr = errors.New("disk full")
				return 0
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Password",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingUser",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Signin_Success",
			path: "/signin",
			body: map[string]string{"email": "bob@example.com", "password": "hunter2"},
			prepare: func(t *testing.T, m *mock.Store) int64 {
				return addUserWithPassword(t, m, "bob@example.com", "hunter2")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Signin_WrongPassword",
			path: "/signin",
			body: map[string]string{"email": "c@example.com", "password": "wrongpw"},
			prepare: func(t *testing.T, m *mock.Store) int64 {
				return addUserWithPassword(t, m, "c@example.com", "rightpw")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signout_OK",
			path:       "/signout",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			var existingID int64
			if tt.prepare != nil {
				existingID = tt.prepare(t, store)
			}
			handler := api.NewAuthHandler(store, tokens)

			var bodyReader io.Reader
			if tt.body != nil {
				b, _ := json.Marshal(tt.body)
				bodyReader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bodyReader)
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signup":
				handler.Signup(w, req)
			case "/signin":
				handler.Signin(w, req)
			case "/signout":
				handler.Signout(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}

			if tt.wantStatus != http.StatusOK || tt.path == "/signout" {
				return
			}
			var ar struct {
				Token  string `json:"token"`
				UserID int64  `json:"user_id"`
			}
			if err := json.Unmarshal(data, &ar); err != nil {
				t.Fatalf("unmarshal token: %v", err)
			}
			id, err := tokens.Parse(ar.Token)
			if err != nil {
				t.Fatalf("invalid token: %v", err)
			}
			if id != ar.UserID {
				t.Fatalf("token user %d does not match response user %d", id, ar.UserID)
			}
			if existingID != 0 && id != existingID {
				t.Fatalf("signin issued token for %d, want %d", id, existingID)
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	store := mock.NewStore()
	alice := store.AddUser("alice", 30)
	handler := api.NewAuthHandler(store, auth.NewTokens("testsecret", time.Hour))

	w := httptest.NewRecorder()
	handler.Me(w, withUser(httptest.NewRequest(http.MethodGet, "/v1/me", nil), alice))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var u models.User
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if u.ID != alice || u.Points != 30 {
		t.Fatalf("unexpected user %+v", u)
	}

	w = httptest.NewRecorder()
	handler.Me(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", w.Code)
	}
}
