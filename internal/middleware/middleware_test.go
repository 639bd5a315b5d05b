package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/policy"
	"github.com/yukikurage/taskhub-api/internal/services"
)

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s stubResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return user, nil
}

func newTestRouter(resolver SessionResolver, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	chain := append([]gin.HandlerFunc{RequireAuth(resolver)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "id": id})
	})
	r.GET("/protected", chain...)
	return r
}

func doRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	resolver := stubResolver{users: map[string]*models.User{
		"good": {ID: 7, Username: "worker", Role: models.RoleEmployee},
	}}
	r := newTestRouter(resolver)

	w := doRequest(r, "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"worker","id":7}`, w.Body.String())

	w = doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = doRequest(r, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredAndFailures(t *testing.T) {
	w := doRequest(newTestRouter(stubResolver{err: services.ErrSessionExpired}), "any")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(newTestRouter(stubResolver{err: errors.New("db down")}), "any")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequirePermission(t *testing.T) {
	resolver := stubResolver{users: map[string]*models.User{
		"employee": {ID: 1, Username: "e", Role: models.RoleEmployee},
		"manager":  {ID: 2, Username: "m", Role: models.RoleDepartmentManager},
	}}
	r := newTestRouter(resolver, RequirePermission(policy.ActionDeleteTask))

	w := doRequest(r, "employee")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = doRequest(r, "manager")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(stubResolver{})

	w := doRequest(r, "")
	generated := w.Header().Get(constants.RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(constants.RequestIDHeader, "client-id-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id-1", w.Header().Get(constants.RequestIDHeader))
}
