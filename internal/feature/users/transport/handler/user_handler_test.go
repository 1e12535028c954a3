package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book_catalog/internal/feature/users/domain/entity"
	"book_catalog/internal/feature/users/usecase"
	jwtmw "book_catalog/internal/platform/jwt"
	"book_catalog/internal/shared/pagination"
)

// mockUserUsecase is a function-field mock of UserUsecase. Unset funcs panic.
type mockUserUsecase struct {
	RegisterFunc       func(in usecase.RegisterInput) (*entity.User, error)
	VerifyOTPFunc      func(email, code string) (string, error)
	ResendOTPFunc      func(email string) (string, error)
	LoginFunc          func(email, password string) (usecase.Tokens, error)
	RefreshFunc        func(token string) (usecase.Tokens, error)
	UpdatePasswordFunc func(userID, oldPassword, newPassword string) error
	PromoteToAdminFunc func(callerID string) (string, *entity.User, error)
	FindAllFunc        func(f usecase.Filter, p pagination.Params) (pagination.Page[entity.User], error)
	FindOneFunc        func(id string) (*entity.User, error)
	DeleteFunc         func(id string) (string, error)
}

func (m *mockUserUsecase) Register(_ context.Context, in usecase.RegisterInput) (*entity.User, error) {
	return m.RegisterFunc(in)
}

func (m *mockUserUsecase) VerifyOTP(_ context.Context, email, code string) (string, error) {
	return m.VerifyOTPFunc(email, code)
}

func (m *mockUserUsecase) ResendOTP(_ context.Context, email string) (string, error) {
	return m.ResendOTPFunc(email)
}

func (m *mockUserUsecase) Login(_ context.Context, email, password string) (usecase.Tokens, error) {
	return m.LoginFunc(email, password)
}

func (m *mockUserUsecase) Refresh(_ context.Context, token string) (usecase.Tokens, error) {
	return m.RefreshFunc(token)
}

func (m *mockUserUsecase) UpdatePassword(_ context.Context, userID, oldPassword, newPassword string) error {
	return m.UpdatePasswordFunc(userID, oldPassword, newPassword)
}

func (m *mockUserUsecase) PromoteToAdmin(_ context.Context, callerID string) (string, *entity.User, error) {
	return m.PromoteToAdminFunc(callerID)
}

func (m *mockUserUsecase) FindAll(_ context.Context, f usecase.Filter, p pagination.Params) (pagination.Page[entity.User], error) {
	return m.FindAllFunc(f, p)
}

func (m *mockUserUsecase) FindOne(_ context.Context, id string) (*entity.User, error) {
	return m.FindOneFunc(id)
}

func (m *mockUserUsecase) Delete(_ context.Context, id string) (string, error) {
	return m.DeleteFunc(id)
}

func sampleUser() *entity.User {
	token := "stored-refresh"
	return &entity.User{
		ID:           "u1",
		Email:        "ada@example.com",
		Password:     "$2a$10$secrethash",
		Name:         "Ada",
		Role:         entity.RoleUser,
		RefreshToken: &token,
	}
}

// asCaller stands in for the auth middleware.
func asCaller(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(jwtmw.ContextUserID, id)
		}
		c.Next()
	}
}

func setupRouter(uc UserUsecase, callerID string) *gin.Engine {
	h := NewUserHandler(uc)
	r := gin.New()
	g := r.Group("/users")
	g.POST("/register", h.Register)
	g.POST("/verify-otp", h.VerifyOTP)
	g.POST("/resend-otp", h.ResendOTP)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.PATCH("/password", asCaller(callerID), h.UpdatePassword)
	g.PATCH("/promoteToAdmin", asCaller(callerID), h.PromoteToAdmin)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           gin.H
		registerFunc   func(in usecase.RegisterInput) (*entity.User, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "accepted",
			body: gin.H{"email": "ada@example.com", "password": "password123", "name": "Ada"},
			registerFunc: func(in usecase.RegisterInput) (*entity.User, error) {
				assert.Equal(t, usecase.RegisterInput{Email: "ada@example.com", Password: "password123", Name: "Ada"}, in)
				return sampleUser(), nil
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "invalid email",
			body:           gin.H{"email": "not-an-email", "password": "password123", "name": "Ada"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Key: 'RegisterReq.Email' Error:Field validation for 'Email' failed on the 'email' tag"}`,
		},
		{
			name:           "short password",
			body:           gin.H{"email": "ada@example.com", "password": "short", "name": "Ada"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Key: 'RegisterReq.Password' Error:Field validation for 'Password' failed on the 'min' tag"}`,
		},
		{
			name: "duplicate",
			body: gin.H{"email": "ada@example.com", "password": "password123", "name": "Ada"},
			registerFunc: func(usecase.RegisterInput) (*entity.User, error) {
				return nil, usecase.ErrUserExists
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"User already exists!"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(setupRouter(&mockUserUsecase{RegisterFunc: tt.registerFunc}, ""), http.MethodPost, "/users/register", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
				return
			}
			assert.NotContains(t, w.Body.String(), "secrethash")
			assert.NotContains(t, w.Body.String(), "stored-refresh")
			assert.Contains(t, w.Body.String(), `"isVerified":false`)
		})
	}
}

func TestUserHandler_VerifyOTP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{VerifyOTPFunc: func(email, code string) (string, error) {
		if code == "123456" {
			return usecase.MsgVerified, nil
		}
		return "", usecase.ErrInvalidOTP
	}}
	r := setupRouter(uc, "")

	w := do(r, http.MethodPost, "/users/verify-otp", gin.H{"email": "ada@example.com", "otp": "123456"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Email verified successfully!"}`, w.Body.String())

	w = do(r, http.MethodPost, "/users/verify-otp", gin.H{"email": "ada@example.com", "otp": "654321"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired OTP"}`, w.Body.String())

	w = do(r, http.MethodPost, "/users/verify-otp", gin.H{"email": "ada@example.com", "otp": "12ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ResendOTP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{ResendOTPFunc: func(string) (string, error) { return usecase.MsgOTPSent, nil }}

	w := do(setupRouter(uc, ""), http.MethodPost, "/users/resend-otp", gin.H{"email": "ada@example.com"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"OTP sent to your email"}`, w.Body.String())
}

func TestUserHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"success", nil, http.StatusOK, `{"access_token":"a","refresh_token":"r"}`},
		{"unknown user", usecase.ErrUserNotFound, http.StatusNotFound, `{"error":"User not found!"}`},
		{"wrong password", usecase.ErrWrongCredentials, http.StatusBadRequest, `{"error":"Wrong credentials!"}`},
		{"unverified", usecase.ErrNotVerified, http.StatusForbidden, `{"error":"You should activate your account before login!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUserUsecase{LoginFunc: func(string, string) (usecase.Tokens, error) {
				if tt.err != nil {
					return usecase.Tokens{}, tt.err
				}
				return usecase.Tokens{AccessToken: "a", RefreshToken: "r"}, nil
			}}

			w := do(setupRouter(uc, ""), http.MethodPost, "/users/login", gin.H{"email": "ada@example.com", "password": "password123"})

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestUserHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{RefreshFunc: func(token string) (usecase.Tokens, error) {
		if token == "good" {
			return usecase.Tokens{AccessToken: "a2", RefreshToken: "r2"}, nil
		}
		return usecase.Tokens{}, usecase.ErrRefreshTokenRevoked
	}}
	r := setupRouter(uc, "")

	w := do(r, http.MethodPost, "/users/refresh", gin.H{"refresh_token": "good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"a2","refresh_token":"r2"}`, w.Body.String())

	w = do(r, http.MethodPost, "/users/refresh", gin.H{"refresh_token": "old"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/users/refresh", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_UpdatePassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{UpdatePasswordFunc: func(userID, oldPassword, newPassword string) error {
		assert.Equal(t, "u1", userID)
		assert.Equal(t, "password123", oldPassword)
		assert.Equal(t, "newpassword1", newPassword)
		return nil
	}}
	body := gin.H{"old_password": "password123", "new_password": "newpassword1"}

	w := do(setupRouter(uc, "u1"), http.MethodPatch, "/users/password", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, w.Body.String())

	w = do(setupRouter(uc, ""), http.MethodPatch, "/users/password", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_PromoteToAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{PromoteToAdminFunc: func(callerID string) (string, *entity.User, error) {
		assert.Equal(t, "u1", callerID)
		u := sampleUser()
		u.Role = entity.RoleAdmin
		return usecase.MsgPromoted, u, nil
	}}

	w := do(setupRouter(uc, "u1"), http.MethodPatch, "/users/promoteToAdmin", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Message string `json:"message"`
		User    struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "User successfully promoted to Admin", res.Message)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "ADMIN", res.User.Role)
}

func TestUserHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("defaults", func(t *testing.T) {
		uc := &mockUserUsecase{FindAllFunc: func(f usecase.Filter, p pagination.Params) (pagination.Page[entity.User], error) {
			assert.Equal(t, usecase.Filter{SortBy: "name", SortOrder: "asc"}, f)
			assert.Equal(t, pagination.Params{Page: 1, Limit: 10}, p)
			return pagination.NewPage([]entity.User{*sampleUser()}, 1, p), nil
		}}

		w := do(setupRouter(uc, ""), http.MethodGet, "/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("filters", func(t *testing.T) {
		uc := &mockUserUsecase{FindAllFunc: func(f usecase.Filter, p pagination.Params) (pagination.Page[entity.User], error) {
			assert.Equal(t, usecase.Filter{Name: "ad", Email: "example", Role: entity.RoleAdmin, SortBy: "email", SortOrder: "desc"}, f)
			return pagination.NewPage[entity.User](nil, 0, p), nil
		}}

		w := do(setupRouter(uc, ""), http.MethodGet, "/users?name=ad&email=example&role=ADMIN&sortBy=email&sortOrder=desc", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		query         string
		expectedError string
	}{
		{"role=ROOT", "role must be one of: ADMIN, USER"},
		{"sortBy=password", "sortBy must be one of: name, email, role"},
		{"sortOrder=up", "sortOrder must be one of: asc, desc"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(setupRouter(&mockUserUsecase{}, ""), http.MethodGet, "/users?"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.expectedError+`"}`, w.Body.String())
		})
	}
}

func TestUserHandler_GetAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockUserUsecase{
		FindOneFunc: func(id string) (*entity.User, error) {
			if id == "u1" {
				return sampleUser(), nil
			}
			return nil, usecase.ErrUserNotFound
		},
		DeleteFunc: func(id string) (string, error) {
			if id == "u1" {
				return usecase.MsgDeleted, nil
			}
			return "", usecase.ErrUserNotFound
		},
	}
	r := setupRouter(uc, "")

	w := do(r, http.MethodGet, "/users/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)

	w = do(r, http.MethodGet, "/users/u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/users/u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/users/u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
