package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-market.com/task-market/internal/cache"
	"task-market.com/task-market/internal/constants"
	dto "task-market.com/task-market/internal/data_models"
	middleware "task-market.com/task-market/internal/http/middlewares"
	model "task-market.com/task-market/internal/models"
	"task-market.com/task-market/internal/queue"
	repository "task-market.com/task-market/internal/repositories"
	"task-market.com/task-market/internal/services"
	"task-market.com/task-market/internal/testutil"
)

const testSecret = "test-secret"

func newServer(t *testing.T, perMinute, burst int) *echo.Echo {
	t.Helper()

	store := repository.NewStore(testutil.NewDB(t))
	svc := services.New(
		store,
		cache.NewMemoryTaskCache(16, time.Minute),
		queue.NewMemoryPublisher(50),
		services.NewPoolService(0, 1),
		services.Options{},
	)

	e := echo.New()
	Register(e, NewHandler(svc), RouteConfig{
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
		JWTSecret:          testSecret,
	})
	return e
}

func token(t *testing.T, subject string, admin bool) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, e *echo.Echo, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, user, user == "admin"))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createTask(t *testing.T, e *echo.Echo) model.Task {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/tasks", "requester",
		`{"title":"Print my thesis","description":"Two copies, bound","price":12.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Task](t, rec)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newServer(t, 100, 100)

	rec := do(t, e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task_market_http_requests_total")
}

func TestAuthRequired(t *testing.T) {
	e := newServer(t, 100, 100)

	rec := do(t, e, http.MethodPost, "/tasks", "", `{"title":"x","description":"y","price":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "missing or malformed bearer token", Kind: "unauthenticated"}, decode[dto.ErrorResponse](t, rec))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	bad := httptest.NewRecorder()
	e.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "invalid token", Kind: "unauthenticated"}, decode[dto.ErrorResponse](t, bad))
}

func TestCreateAndGetTask(t *testing.T) {
	e := newServer(t, 100, 100)

	rec := do(t, e, http.MethodPost, "/tasks", "requester", `{"title":"","description":"y","price":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "title is required", Kind: "validation_error"}, decode[dto.ErrorResponse](t, rec))

	rec = do(t, e, http.MethodPost, "/tasks", "requester", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	task := createTask(t, e)
	assert.Equal(t, constants.TaskOpen, task.Status)
	assert.Equal(t, "requester", task.RequesterID)

	rec = do(t, e, http.MethodGet, "/tasks/"+task.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, task.ID, decode[model.Task](t, rec).ID)

	rec = do(t, e, http.MethodGet, "/tasks/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[dto.ErrorResponse](t, rec).Kind)

	rec = do(t, e, http.MethodGet, "/tasks?status=open&pageSize=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.TaskListResponse](t, rec)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.TotalPages)

	rec = do(t, e, http.MethodGet, "/tasks?pageSize=1000", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[dto.ErrorResponse](t, rec).Kind)
}

func TestApplicationLifecycle(t *testing.T) {
	e := newServer(t, 100, 100)
	task := createTask(t, e)
	base := "/tasks/" + task.ID

	rec := do(t, e, http.MethodPost, base+"/applications", "requester", `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/applications", "u1", `{"message":"I have a printer","proposedPrice":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a1 := decode[model.Application](t, rec)

	rec = do(t, e, http.MethodPost, base+"/applications", "u2", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	a2 := decode[model.Application](t, rec)

	rec = do(t, e, http.MethodPatch, base+"/applications/"+a1.ID, "requester", `{"status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPatch, base+"/applications/"+a1.ID, "u2", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPatch, base+"/applications/"+a1.ID, "requester", `{"status":"accepted"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, constants.ApplicationAccepted, decode[model.Application](t, rec).Status)

	rec = do(t, e, http.MethodGet, base+"/applications/"+a2.ID, "u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.ApplicationRejected, decode[model.Application](t, rec).Status)

	rec = do(t, e, http.MethodPatch, base+"/applications/"+a2.ID, "requester", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", decode[dto.ErrorResponse](t, rec).Kind)

	rec = do(t, e, http.MethodPost, base+"/messages", "u2", `{"content":"me too?"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/messages", "u1", `{"content":"done soon"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, base+"/messages", "requester", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/reviews", "requester", `{"rating":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/complete", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constants.TaskCompleted, decode[model.Task](t, rec).Status)

	rec = do(t, e, http.MethodPost, base+"/cancel", "requester", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/reviews", "requester", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, base+"/reviews", "requester", `{"rating":5,"comment":"fast"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/users/u1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[model.Profile](t, rec)
	assert.Equal(t, 5.0, profile.Rating)
	assert.Equal(t, 1, profile.CompletedTasks)

	rec = do(t, e, http.MethodGet, base+"/reviews", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	e := newServer(t, 100, 100)
	task := createTask(t, e)

	rec := do(t, e, http.MethodPost, "/tasks/"+task.ID+"/applications", "u1", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/notifications?limit=10", "requester", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[services.NotificationPage](t, rec)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(1), page.UnreadCount)
	assert.Equal(t, constants.NotificationApplicationReceived, page.Notifications[0].Type)

	id := page.Notifications[0].ID

	rec = do(t, e, http.MethodPut, "/notifications/"+id, "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPut, "/notifications/"+id, "requester", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.Notification](t, rec).IsRead)

	rec = do(t, e, http.MethodPut, "/notifications", "requester", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unreadCount":0}`, rec.Body.String())

	rec = do(t, e, http.MethodDelete, "/notifications/"+id, "requester", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/users/me", "requester", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "requester", decode[model.Profile](t, rec).ID)
}

func TestRateLimiter(t *testing.T) {
	e := newServer(t, 1, 2)

	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/tasks", "", "").Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/tasks", "", "").Code)

	rec := do(t, e, http.MethodGet, "/tasks", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, dto.ErrorResponse{Error: "rate limit exceeded", Kind: "rate_limited"}, decode[dto.ErrorResponse](t, rec))
}

func TestCategoryEndpoints(t *testing.T) {
	e := newServer(t, 100, 100)

	rec := do(t, e, http.MethodPost, "/categories", "requester", `{"name":"Moving"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode[dto.ErrorResponse](t, rec).Kind)

	rec = do(t, e, http.MethodPost, "/categories", "admin", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/categories", "admin", `{"name":"Moving","color":"#00ff00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	moving := decode[model.Category](t, rec)
	assert.True(t, moving.IsActive)

	rec = do(t, e, http.MethodPost, "/categories", "admin", `{"name":"moving"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/tasks", "requester",
		`{"title":"Lift a piano","description":"Ground floor","price":80,"categoryId":"`+moving.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[model.Task](t, rec)

	rec = do(t, e, http.MethodPost, "/tasks", "requester",
		`{"title":"Lift a piano","description":"Ground floor","price":80,"categoryId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/categories/"+moving.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[model.Category](t, rec).TaskCount)

	rec = do(t, e, http.MethodDelete, "/categories/"+moving.ID, "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", decode[dto.ErrorResponse](t, rec).Kind)

	rec = do(t, e, http.MethodPut, "/categories/"+moving.ID, "admin", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[model.Category](t, rec).IsActive)

	rec = do(t, e, http.MethodGet, "/categories?active=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.CategoryListResponse](t, rec).Data)

	rec = do(t, e, http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.CategoryListResponse](t, rec).Data, 1)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodDelete, "/tasks/"+task.ID, "requester", "").Code)
	rec = do(t, e, http.MethodDelete, "/categories/"+moving.ID, "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/categories/"+moving.ID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
