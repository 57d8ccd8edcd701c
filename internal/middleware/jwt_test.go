package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/twfilmdata/boxoffice/internal/utils"
)

func callProtected(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var subject string
	h := JWTAuth(secret)(func(c echo.Context) error {
		subject, _ = c.Get("admin").(string)
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/scrape", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec, subject
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAdminToken("secret", "admin", 5)
	if err != nil {
		t.Fatal(err)
	}
	rec, subject := callProtected(t, "secret", "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if subject != "admin" {
		t.Errorf("context subject = %q, want admin", subject)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	valid, err := utils.NewAdminToken("secret", "admin", 5)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := utils.NewAdminToken("secret", "admin", -5)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name   string
		secret string
		header string
	}{
		{"no header", "secret", ""},
		{"not bearer", "secret", "Basic abc"},
		{"garbage token", "secret", "Bearer not.a.jwt"},
		{"wrong secret", "other-secret", "Bearer " + valid.Token},
		{"expired token", "secret", "Bearer " + expired.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := callProtected(t, tc.secret, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
