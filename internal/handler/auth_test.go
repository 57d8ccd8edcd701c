package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/twfilmdata/boxoffice/internal/config"
	"github.com/twfilmdata/boxoffice/internal/utils"
)

func testAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &AuthHandler{Cfg: config.Config{
		JWTSecret:     "test-secret",
		AccessTTLMin:  15,
		AdminUser:     "admin",
		AdminPassHash: hash,
	}}
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return rec
}

func TestLoginSuccess(t *testing.T) {
	h := testAuthHandler(t)
	rec := postLogin(t, h, `{"username":"admin","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.AccessToken == "" {
		t.Error("response has no access_token")
	}
}

// Wrong username and wrong password must be indistinguishable.
func TestLoginRejectsBadCredentials(t *testing.T) {
	h := testAuthHandler(t)
	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`},
		{"unknown user", `{"username":"root","password":"correct-horse"}`},
		{"empty body", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postLogin(t, h, tc.body)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
