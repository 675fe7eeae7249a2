package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTConfig = JWTConfig{
	Secret:    "test-secret",
	Issuer:    "lexflow-test",
	ExpiresIn: time.Hour,
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Email:    "jane@firm.example",
		FullName: "Jane Doe",
		Role:     domain.RoleLawyer,
		OfficeID: "office-1",
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWTConfig)
	require.NoError(t, err)

	claims, err := validateJWT(token, testJWTConfig.Secret, testJWTConfig.Issuer)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "jane@firm.example", claims.Email)
	assert.Equal(t, domain.RoleLawyer, claims.Role)
	assert.Equal(t, "office-1", claims.OfficeID)
}

func TestJWTExpired(t *testing.T) {
	cfg := testJWTConfig
	cfg.ExpiresIn = -time.Hour

	token, err := GenerateJWT(testUser(), cfg)
	require.NoError(t, err)

	_, err = validateJWT(token, cfg.Secret, cfg.Issuer)
	assert.ErrorContains(t, err, "token expired")
}

func TestJWTTamperedSignature(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWTConfig)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := parts[0] + "." + parts[1] + ".AAAA"

	_, err = validateJWT(forged, testJWTConfig.Secret, testJWTConfig.Issuer)
	assert.ErrorContains(t, err, "invalid token signature")
}

func TestJWTWrongIssuer(t *testing.T) {
	token, err := GenerateJWT(testUser(), testJWTConfig)
	require.NoError(t, err)

	_, err = validateJWT(token, testJWTConfig.Secret, "someone-else")
	assert.ErrorContains(t, err, "invalid token issuer")
}

func TestJWTMiddlewareInjectsUserContext(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWTConfig))
	app.Get("/me", func(c fiber.Ctx) error {
		uc := GetUserContext(c)
		require.NotNil(t, uc)
		return c.JSON(uc)
	})

	token, err := GenerateJWT(testUser(), testJWTConfig)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"office_id":"office-1"`)
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testJWTConfig))
	app.Get("/me", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
