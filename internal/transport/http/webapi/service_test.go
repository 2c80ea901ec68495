package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass-server-go/internal/domain/auth"
	"gatepass-server-go/internal/domain/directory"
	"gatepass-server-go/internal/domain/visit"
	"gatepass-server-go/internal/platform/config"
	"gatepass-server-go/internal/platform/logging"
	"gatepass-server-go/internal/platform/storage"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

type testStack struct {
	engine *gin.Engine
	auth   *auth.Service
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenMemory()
	require.NoError(t, err)

	logger, err := logging.New(logging.Config{
		Level:    "error",
		Dir:      t.TempDir(),
		Filename: "test.log",
	})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	authSvc, err := auth.NewService(storage.NewAccountRepository(db), logger, config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  config.Duration(time.Hour),
	})
	require.NoError(t, err)

	visitSvc, err := visit.NewService(storage.NewVisitRepository(db), nil, logger)
	require.NoError(t, err)

	directorySvc, err := directory.NewService(storage.NewDepartmentRepository(db), logger)
	require.NoError(t, err)

	svc, err := NewService(authSvc, visitSvc, directorySvc, logger)
	require.NoError(t, err)

	engine := gin.New()
	require.NoError(t, svc.Register(context.Background(), engine.Group("")))

	return &testStack{engine: engine, auth: authSvc}
}

func (ts *testStack) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

// loginAs registers (ignoring duplicates) and logs in, returning the token.
func (ts *testStack) loginAs(t *testing.T, name, role string) string {
	t.Helper()
	ctx := context.Background()

	_, err := ts.auth.Register(ctx, name, name+"@example.com", "password1", role)
	if err != nil {
		require.True(t, auth.IsConflict(err), "register %s: %v", name, err)
	}

	token, err := ts.auth.Login(ctx, name, "password1")
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func validPass() map[string]interface{} {
	return map[string]interface{}{
		"name":           "Asha Verma",
		"mobile":         "9876543210",
		"address":        "12 Park Lane",
		"idProof":        "DL-4411",
		"personToMeet":   "R. Iyer",
		"designation":    "Consultant",
		"department":     "Engineering",
		"meetingPurpose": "Design review",
		"photo":          "data:image/png;base64," + tinyPNG,
	}
}

func TestHealth(t *testing.T) {
	ts := newTestStack(t)
	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterAndDuplicate(t *testing.T) {
	ts := newTestStack(t)

	body := map[string]string{"name": "frontdesk", "email": "fd@example.com", "password": "secret12"}
	w := ts.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret12")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// same name, different case, different email: still a duplicate
	dup := map[string]string{"name": "FRONTDESK", "email": "other@example.com", "password": "secret12"}
	w = ts.do(t, http.MethodPost, "/register", "", dup)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	ts := newTestStack(t)
	ts.loginAs(t, "frontdesk", "operator")

	wrongPassword := ts.do(t, http.MethodPost, "/login",
		"", map[string]string{"name": "frontdesk", "password": "wrong"})
	unknownUser := ts.do(t, http.MethodPost, "/login",
		"", map[string]string{"name": "nobody", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestLoginReturnsWorkingToken(t *testing.T) {
	ts := newTestStack(t)
	ts.loginAs(t, "frontdesk", "operator")

	w := ts.do(t, http.MethodPost, "/login",
		"", map[string]string{"name": "frontdesk", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)

	probe := ts.do(t, http.MethodGet, "/check-admin", token, nil)
	assert.Equal(t, http.StatusOK, probe.Code)
}

func TestCheckAdmin(t *testing.T) {
	ts := newTestStack(t)

	adminToken := ts.loginAs(t, "boss", "admin")
	operatorToken := ts.loginAs(t, "frontdesk", "operator")

	w := ts.do(t, http.MethodGet, "/check-admin", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeEnvelope(t, w)["data"].(map[string]interface{})["isAdmin"])

	w = ts.do(t, http.MethodGet, "/check-admin", operatorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeEnvelope(t, w)["data"].(map[string]interface{})["isAdmin"])

	w = ts.do(t, http.MethodGet, "/check-admin", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/check-admin", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVisitorPassLifecycle(t *testing.T) {
	ts := newTestStack(t)
	token := ts.loginAs(t, "frontdesk", "operator")

	// token required
	w := ts.do(t, http.MethodPost, "/visitor-pass", "", validPass())
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/visitor-pass", token, validPass())
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["badgeId"])
	assert.NotEmpty(t, data["createdAt"])
	assert.NotNil(t, data["qrData"])
	id := uint(data["id"].(float64))

	// badge QR renders as a PNG
	qr := ts.do(t, http.MethodGet, fmt.Sprintf("/visitor-pass/%d/qr", id), token, nil)
	require.Equal(t, http.StatusOK, qr.Code)
	assert.Equal(t, "image/png", qr.Header().Get("Content-Type"))

	missing := ts.do(t, http.MethodGet, "/visitor-pass/99999/qr", token, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestVisitorPassRejections(t *testing.T) {
	ts := newTestStack(t)
	token := ts.loginAs(t, "frontdesk", "operator")

	noMobile := validPass()
	noMobile["mobile"] = ""
	w := ts.do(t, http.MethodPost, "/visitor-pass", token, noMobile)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	badPhoto := validPass()
	badPhoto["photo"] = "https://example.com/a.png"
	w = ts.do(t, http.MethodPost, "/visitor-pass", token, badPhoto)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisitorsReport(t *testing.T) {
	ts := newTestStack(t)
	token := ts.loginAs(t, "frontdesk", "operator")

	w := ts.do(t, http.MethodPost, "/visitor-pass", token, validPass())
	require.Equal(t, http.StatusCreated, w.Code)

	today := time.Now().UTC().Format("2006-01-02")

	list := ts.do(t, http.MethodGet, "/visitors?date="+today, token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeEnvelope(t, list)["data"].([]interface{}), 1)

	filtered := ts.do(t, http.MethodGet, "/visitors?date="+today+"&department=Engineering", token, nil)
	require.Equal(t, http.StatusOK, filtered.Code)
	assert.Len(t, decodeEnvelope(t, filtered)["data"].([]interface{}), 1)

	sentinel := ts.do(t, http.MethodGet, "/visitors?date="+today+"&department=All", token, nil)
	require.Equal(t, http.StatusOK, sentinel.Code)
	assert.Len(t, decodeEnvelope(t, sentinel)["data"].([]interface{}), 1)

	// zero matches stays a 200 with an empty list
	none := ts.do(t, http.MethodGet, "/visitors?date="+today+"&department=Finance", token, nil)
	require.Equal(t, http.StatusOK, none.Code)
	assert.Len(t, decodeEnvelope(t, none)["data"].([]interface{}), 0)

	bad := ts.do(t, http.MethodGet, "/visitors?date=not-a-date", token, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestUserRoutesRoleGating(t *testing.T) {
	ts := newTestStack(t)
	adminToken := ts.loginAs(t, "boss", "admin")
	operatorToken := ts.loginAs(t, "frontdesk", "operator")

	// listing accounts is admin-only
	w := ts.do(t, http.MethodGet, "/users", operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// username probe is open to any token
	w = ts.do(t, http.MethodGet, "/users/frontdesk", operatorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "frontdesk", data["name"])
	assert.Equal(t, "frontdesk@example.com", data["email"])

	w = ts.do(t, http.MethodGet, "/users/ghost", operatorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// delete is admin-only
	w = ts.do(t, http.MethodDelete, "/users/1", operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserUpdateAndDelete(t *testing.T) {
	ts := newTestStack(t)
	adminToken := ts.loginAs(t, "boss", "admin")
	ts.loginAs(t, "frontdesk", "operator")

	listed := ts.do(t, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, listed.Code)

	var target float64
	for _, entry := range decodeEnvelope(t, listed)["data"].([]interface{}) {
		account := entry.(map[string]interface{})
		if account["name"] == "frontdesk" {
			target = account["id"].(float64)
		}
	}
	require.NotZero(t, target)

	w := ts.do(t, http.MethodPut, fmt.Sprintf("/users/%.0f", target), adminToken,
		map[string]string{"password": "newpassword"})
	require.Equal(t, http.StatusOK, w.Code)

	// the new password works, the old one does not
	relogin := ts.do(t, http.MethodPost, "/login",
		"", map[string]string{"name": "frontdesk", "password": "newpassword"})
	assert.Equal(t, http.StatusOK, relogin.Code)
	stale := ts.do(t, http.MethodPost, "/login",
		"", map[string]string{"name": "frontdesk", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, stale.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/users/%.0f", target), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/users/frontdesk", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDepartmentRoutes(t *testing.T) {
	ts := newTestStack(t)
	adminToken := ts.loginAs(t, "boss", "admin")
	operatorToken := ts.loginAs(t, "frontdesk", "operator")

	// creation is admin-only
	w := ts.do(t, http.MethodPost, "/departments", operatorToken, map[string]string{"name": "Engineering"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/departments", adminToken, map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicates report 400 on this endpoint
	w = ts.do(t, http.MethodPost, "/departments", adminToken, map[string]string{"name": "Engineering"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/departments", adminToken, map[string]string{"name": "Finance"})
	require.Equal(t, http.StatusCreated, w.Code)

	list := ts.do(t, http.MethodGet, "/departments", operatorToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	names := decodeEnvelope(t, list)["data"].([]interface{})
	require.Len(t, names, 2)
	assert.Equal(t, "Engineering", names[0].(map[string]interface{})["name"])
	assert.Equal(t, "Finance", names[1].(map[string]interface{})["name"])

	// deleting twice still succeeds
	first := names[0].(map[string]interface{})["id"].(float64)
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/departments/%.0f", first), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/departments/%.0f", first), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/departments/1", operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
