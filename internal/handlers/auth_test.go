package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/motorlog/vehicle-maintenance/internal/auth"
	"github.com/motorlog/vehicle-maintenance/internal/models"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	service, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return service
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newAuthService(t)

	t.Run("successful login", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		passwordHash, err := authService.HashPassword("password123")
		require.NoError(t, err)
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "mechbob",
			Email:        "bob@example.com",
			PasswordHash: passwordHash,
			Role:         models.RoleMechanic,
			IsActive:     true,
		}

		users.On("FindUserByUsername", mock.Anything, "mechbob").Return(user, nil)
		users.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "mechbob", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.NotEmpty(t, response.RefreshToken)
		assert.Equal(t, "mechbob", response.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "mechbob",
			PasswordHash: passwordHash,
			IsActive:     true,
		}
		users.On("FindUserByUsername", mock.Anything, "mechbob").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "mechbob", Password: "wrong"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		users.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, mongo.ErrNoDocuments)

		body, _ := json.Marshal(models.LoginRequest{Username: "ghost", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "former",
			PasswordHash: passwordHash,
			IsActive:     false,
		}
		users.On("FindUserByUsername", mock.Anything, "former").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "former", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection))

		body, _ := json.Marshal(models.LoginRequest{Username: "mechbob"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := newAuthService(t)

	t.Run("successful registration", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		users.On("FindUserByUsername", mock.Anything, "newmech").Return(nil, mongo.ErrNoDocuments)
		users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, mongo.ErrNoDocuments)
		users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Username == "newmech" && u.Role == models.RoleMechanic && u.IsActive
		})).Return(nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Username:  "newmech",
			Email:     "new@example.com",
			Password:  "password123",
			FirstName: "New",
			LastName:  "Mechanic",
			Role:      models.RoleMechanic,
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		users.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users)

		users.On("FindUserByUsername", mock.Anything, "taken").Return(&models.User{Username: "taken"}, nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "taken",
			Email:    "taken@example.com",
			Password: "password123",
			Role:     models.RoleViewer,
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid input", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection))

		tests := []struct {
			name string
			req  models.RegisterRequest
		}{
			{"short username", models.RegisterRequest{Username: "ab", Email: "a@b.com", Password: "password123", Role: models.RoleViewer}},
			{"bad email", models.RegisterRequest{Username: "validuser", Email: "nope", Password: "password123", Role: models.RoleViewer}},
			{"short password", models.RegisterRequest{Username: "validuser", Email: "a@b.com", Password: "short", Role: models.RoleViewer}},
			{"bad role", models.RegisterRequest{Username: "validuser", Email: "a@b.com", Password: "password123", Role: "boss"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				body, _ := json.Marshal(tt.req)
				req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
				w := httptest.NewRecorder()
				handler.Register(w, req)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})
}
