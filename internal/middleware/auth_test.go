package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
)

type stubGate struct {
	users map[string]models.User
	err   error
	seen  []string
}

func (g *stubGate) Resolve(ctx context.Context, token string) (models.User, error) {
	g.seen = append(g.seen, token)
	if g.err != nil {
		return models.User{}, g.err
	}
	user, ok := g.users[token]
	if !ok {
		return models.User{}, apperror.Unauthenticated("invalid token", nil)
	}
	return user, nil
}

func newAuthApp(gate Gate) *fiber.App {
	app := fiber.New()
	app.Get("/me", Authenticate(gate), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"username": user.Username, "user_id": c.Locals("user_id")})
	})
	return app
}

func TestAuthenticateStoresResolvedUser(t *testing.T) {
	alice := models.User{ID: uuid.New(), Username: "alice", Role: models.RoleDataManager}
	gate := &stubGate{users: map[string]models.User{"good-token": alice}}
	app := newAuthApp(gate)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "alice", body["username"])
	require.Equal(t, alice.ID.String(), body["user_id"])
	require.Equal(t, []string{"good-token"}, gate.seen)
}

func TestAuthenticateRejectsMissingOrMalformedHeaders(t *testing.T) {
	gate := &stubGate{}
	app := newAuthApp(gate)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	}
	require.Empty(t, gate.seen, "the gate is never consulted without a token")
}

func TestAuthenticateMapsGateErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"expired", apperror.Unauthenticated("token expired", nil), fiber.StatusUnauthorized, "token expired"},
		{"storage", apperror.NewStorage("get user", context.DeadlineExceeded), fiber.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthApp(&stubGate{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer some-token")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tc.message, body["message"])
		})
	}
}
