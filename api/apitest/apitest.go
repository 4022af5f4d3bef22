// Package apitest builds an echo instance wired like the server for handler tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/auth"
	"warehouse.GO/core/cache"
	"warehouse.GO/core/lock"
	"warehouse.GO/core/response"
	"warehouse.GO/core/validate"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	userRepo "warehouse.GO/model/repository/user"
	"warehouse.GO/model/testdb"
	"warehouse.GO/service/stock"
)

var users atomic.Int64

type Env struct {
	t      testing.TB
	E      *echo.Echo
	DB     *gorm.DB
	API    *echo.Group
	Tokens *auth.TokenManager
	Logger *logrus.Logger
}

// Body is a decoded response envelope with raw data.
type Body struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Code       string               `json:"code"`
	Data       json.RawMessage      `json:"data"`
	Errors     []map[string]string  `json:"errors"`
	Details    map[string]any       `json:"details"`
	Pagination *response.Pagination `json:"pagination"`
}

func New(t testing.TB) *Env {
	t.Helper()
	db := testdb.Open(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New("VN")
	e.HTTPErrorHandler = response.ErrorHandler(logger)

	tm := auth.NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	bl := auth.NewBlacklist(authRepo.NewAuthRepository(db), nil, logger)
	skip := config.GetAuthSkipperPaths()
	g := e.Group("/api", auth.NewMiddleware(tm, bl, userRepo.NewUserRepository(db), func(c echo.Context) bool {
		for _, p := range skip {
			if c.Path() == p {
				return true
			}
		}
		return false
	}))
	return &Env{t: t, E: e, DB: db, API: g, Tokens: tm, Logger: logger}
}

// Login creates an active user with role and returns a bearer access token for it.
func (env *Env) Login(role entity.Role) (*entity.User, string) {
	env.t.Helper()
	name := fmt.Sprintf("%s%d", role, users.Add(1))
	u := &entity.User{Username: name, Email: name + "@example.com", Password: "secret1", Role: role, IsActive: true}
	if err := env.DB.Create(u).Error; err != nil {
		env.t.Fatalf("create user: %v", err)
	}
	pair, err := env.Tokens.Issue(u)
	if err != nil {
		env.t.Fatalf("issue token: %v", err)
	}
	return u, pair.AccessToken
}

// Stock returns a stock service on the test database with an in-process lock and cache.
func (env *Env) Stock() *stock.Service {
	return stock.NewService(env.DB, lock.New(nil, time.Second, env.Logger), cache.NewCache(nil), env.Logger)
}

// Do sends a JSON request. body may be nil, a string or any value to marshal.
func (env *Env) Do(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			env.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// Decode parses the envelope of rec and, when data is non-nil, its data field.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, data any) Body {
	t.Helper()
	var b Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(b.Data) > 0 {
		if err := json.Unmarshal(b.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", b.Data, err)
		}
	}
	return b
}

// Expect fails the test when rec does not have status and, if code is set, the error code.
func Expect(t testing.TB, rec *httptest.ResponseRecorder, status int, code string) Body {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body.String())
	}
	b := Decode(t, rec, nil)
	if code != "" && b.Code != code {
		t.Fatalf("code = %q, want %q; body %s", b.Code, code, rec.Body.String())
	}
	return b
}
