package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleReceiver)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, domain.RoleReceiver, claims.Role)
}

func TestTokenManager_RejectsForeignSecretAndExpired(t *testing.T) {
	token, _, err := NewTokenManager("other", 5).GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 5).ParseToken(token)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		SubjectID: "user-1",
		Role:      domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 5).ParseToken(signed)
	assert.Error(t, err)
}

func TestPassword_HashAndMatch(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)
	assert.True(t, PasswordMatches(hash, "s3cret!"))
	assert.False(t, PasswordMatches(hash, "wrong"))
	assert.False(t, PasswordMatches("not-a-hash", "s3cret!"))
}

func TestPassword_Limits(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword("s3cret!", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func newGuardedApp(t *testing.T) (*fiber.App, *TokenManager, map[domain.Role]string) {
	t.Helper()
	store := repository.NewMemoryStore()
	tm := NewTokenManager("secret", 5)
	ids := map[domain.Role]string{}
	for _, role := range []domain.Role{domain.RoleDonor, domain.RoleAdmin} {
		u := &domain.User{Name: string(role), Email: string(role) + "@example.com", Role: role}
		require.NoError(t, store.Repos().Users.Create(context.Background(), u))
		ids[role] = u.ID
	}

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	mw := NewAuthMiddleware(tm, store.Repos().Users)
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.UserID())
	})
	return app, tm, ids
}

func TestAuthMiddleware_RoleGuard(t *testing.T) {
	app, tm, ids := newGuardedApp(t)

	call := func(header string) (int, error) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	}

	status, err := call("")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, err = call("Bearer garbage")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	donorToken, _, err := tm.GenerateToken(ids[domain.RoleDonor], domain.RoleDonor)
	require.NoError(t, err)
	status, err = call("Bearer " + donorToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)

	adminToken, _, err := tm.GenerateToken(ids[domain.RoleAdmin], domain.RoleAdmin)
	require.NoError(t, err)
	status, err = call("Bearer " + adminToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	unknownToken, _, err := tm.GenerateToken("missing-user", domain.RoleAdmin)
	require.NoError(t, err)
	status, err = call("Bearer " + unknownToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}
