package identity

import (
	"EstateHub/client"
	"EstateHub/models"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSignInReturnsAccount(t *testing.T) {
	id := primitive.NewObjectID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.LoginResponse{
			Token: "tok",
			User:  models.User{ID: id, Name: "Asha", Email: "asha@example.com", Avatar: "a.png"},
		})
	}))
	defer srv.Close()

	acc, err := New(client.New(srv.URL)).SignIn(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), acc.UID)
	assert.Equal(t, "tok", acc.Token)
	assert.Equal(t, "a.png", acc.AvatarURL)
}

func TestErrorsAreTranslated(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   string
		msg    string
	}{
		{http.StatusUnauthorized, `{"error":"Invalid email or password"}`, CodeInvalidCredential, "Invalid email or password"},
		{http.StatusConflict, `{"error":"Email already in use"}`, CodeEmailInUse, "Email already in use"},
		{http.StatusServiceUnavailable, `{"error":"Google sign-in is not configured"}`, CodeNotConfigured, "Google sign-in is not configured"},
		{http.StatusInternalServerError, `oops`, CodeRejected, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		_, err := New(client.New(srv.URL)).SignInFederated(context.Background(), "code")
		srv.Close()

		var idErr *Error
		require.ErrorAs(t, err, &idErr)
		assert.Equal(t, tt.code, idErr.Code)
		assert.Equal(t, tt.msg, idErr.Error())
	}
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(client.New(srv.URL)).CurrentUser(context.Background(), "tok")
	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, CodeUnavailable, idErr.Code)
	assert.False(t, IsUnauthorized(err))
}

func TestDeletedAccountIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer srv.Close()

	_, err := New(client.New(srv.URL)).CurrentUser(context.Background(), "tok")
	var idErr *Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, CodeInvalidCredential, idErr.Code)
	assert.True(t, IsUnauthorized(err))
}

func TestUpdateProfileUsesGivenToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req models.UpdateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(models.User{Name: req.Name, Email: req.Email})
	}))
	defer srv.Close()

	acc, err := New(client.New(srv.URL)).UpdateProfile(context.Background(), "tok", ProfileUpdate{Name: "Asha R", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", acc.Email)
	assert.Equal(t, "tok", acc.Token)
}
