package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/testutil"
)

type testApp struct {
	*App
	t  *testing.T
	db *gorm.DB
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}
	app, err := NewApp(cfg, db, Options{ExportRunner: func(fn func()) { fn() }})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &testApp{App: app, t: t, db: db}
}

func (a *testApp) do(method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	a.t.Helper()
	w := testutil.MakeRequest(a.t, a.Router, method, path, body, headers)
	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && w.Body.Bytes()[0] == '{' {
		testutil.DecodeJSON(a.t, w, &out)
	}
	return w.Code, out
}

// signup registers and logs in, returning auth headers.
func (a *testApp) signup(email string) map[string]string {
	a.t.Helper()
	code, _ := a.do(http.MethodPost, "/api/auth/register", gin.H{"name": "N", "email": email, "password": "secret1"}, nil)
	require.Equal(a.t, http.StatusCreated, code)
	code, body := a.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "secret1"}, nil)
	require.Equal(a.t, http.StatusOK, code)
	return testutil.Bearer(body["access_token"].(string))
}

func surveyBody(allowMultiple bool) gin.H {
	return gin.H{
		"title":                  "Team lunch",
		"allowMultipleResponses": allowMultiple,
		"questions": []gin.H{
			{"text": "Comments", "type": "open", "isRequired": false},
			{"text": "Where?", "type": "single", "options": []gin.H{{"text": "A"}, {"text": "B"}, {"text": "C"}}},
		},
	}
}

type createdSurvey struct {
	id       uint
	publicID string
	openQ    uint
	choiceQ  uint
	options  []uint
}

func (a *testApp) createSurvey(headers map[string]string, allowMultiple bool) createdSurvey {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/surveys", surveyBody(allowMultiple), headers)
	require.Equal(a.t, http.StatusCreated, code, "%v", body)

	qs := body["questions"].([]interface{})
	require.Len(a.t, qs, 2)
	choice := qs[1].(map[string]interface{})
	var opts []uint
	for _, o := range choice["options"].([]interface{}) {
		opts = append(opts, uint(o.(map[string]interface{})["id"].(float64)))
	}
	return createdSurvey{
		id:       uint(body["id"].(float64)),
		publicID: body["publicId"].(string),
		openQ:    uint(qs[0].(map[string]interface{})["id"].(float64)),
		choiceQ:  uint(choice["id"].(float64)),
		options:  opts,
	}
}

func TestHealthAndPing(t *testing.T) {
	app := newTestApp(t, nil)

	code, body := app.do(http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body["message"])

	code, body = app.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["db"])

	w := testutil.MakeRequest(t, app.Router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "survey_hub_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, nil)

	code, _ := app.do(http.MethodPost, "/api/auth/register", gin.H{"name": "A", "email": "a@example.com", "password": "123"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "password too short")

	headers := app.signup("a@example.com")

	code, body := app.do(http.MethodPost, "/api/auth/register", gin.H{"name": "A", "email": "a@example.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, body["message"])

	code, _ = app.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "123456"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = app.do(http.MethodGet, "/api/auth/me", nil, headers)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@example.com", user["email"])
	assert.NotContains(t, user, "password")

	code, _ = app.do(http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = app.do(http.MethodPost, "/api/auth/google/login", gin.H{"id_token": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, code, "google sign-in is off without a client id")
}

func TestSurveyCRUDAndOwnership(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.signup("alice@example.com")
	bob := app.signup("bob@example.com")

	s := app.createSurvey(alice, false)

	code, body := app.do(http.MethodGet, "/api/surveys", nil, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = app.do(http.MethodGet, "/api/surveys", nil, bob)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["total"])

	path := fmt.Sprintf("/api/surveys/%d", s.id)
	code, body = app.do(http.MethodGet, path, nil, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Team lunch", body["title"])

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, path},
		{http.MethodPatch, path},
		{http.MethodDelete, path},
		{http.MethodGet, path + "/results"},
		{http.MethodGet, path + "/results/export"},
		{http.MethodPost, path + "/exports"},
	} {
		code, _ := app.do(tc.method, tc.path, gin.H{"title": "x"}, bob)
		assert.Equal(t, http.StatusForbidden, code, "%s %s", tc.method, tc.path)
	}

	code, _ = app.do(http.MethodGet, "/api/surveys/99999", nil, alice)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = app.do(http.MethodPatch, path, gin.H{"title": "Renamed", "isActive": false}, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", body["title"])
	assert.Equal(t, false, body["isActive"])

	code, _ = app.do(http.MethodPatch, path, gin.H{}, alice)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = app.do(http.MethodDelete, path, nil, alice)
	assert.Equal(t, http.StatusOK, code)
	code, _ = app.do(http.MethodGet, path, nil, alice)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateSurveyValidation(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.signup("alice@example.com")

	bad := []gin.H{
		{},
		{"title": "t", "questions": []gin.H{{"text": "q", "type": "rating"}}},
		{"title": "t", "questions": []gin.H{{"text": "q", "type": "single"}}},
		{"title": "t", "questions": []gin.H{{"type": "open"}}},
	}
	for i, b := range bad {
		code, _ := app.do(http.MethodPost, "/api/surveys", b, alice)
		assert.Equal(t, http.StatusUnprocessableEntity, code, "case %d", i)
	}

	code, _ := app.do(http.MethodPost, "/api/surveys", surveyBody(false), nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPublicSubmissionFlow(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.signup("alice@example.com")
	s := app.createSurvey(alice, false)
	base := "/api/surveys/public/" + s.publicID

	code, body := app.do(http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Team lunch", body["title"])
	assert.NotContains(t, body, "creatorId")

	code, body = app.do(http.MethodGet, base+"/check-duplicate?sessionId=tok", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["duplicate"])

	answers := gin.H{"sessionId": "tok", "answers": []gin.H{
		{"questionId": s.openQ, "textAnswer": "yum"},
		{"questionId": s.choiceQ, "selectedOptions": []uint{s.options[0]}},
	}}
	code, body = app.do(http.MethodPost, base+"/responses", answers, nil)
	require.Equal(t, http.StatusCreated, code, "%v", body)
	assert.Equal(t, "tok", body["sessionId"])

	code, body = app.do(http.MethodPost, base+"/responses", answers, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, body["message"])

	code, body = app.do(http.MethodGet, base+"/check-duplicate", nil, map[string]string{"X-Session-Id": "tok"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["duplicate"])

	code, body = app.do(http.MethodPost, base+"/responses", gin.H{"answers": []gin.H{{"questionId": 424242, "textAnswer": "x"}}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "%v", body)
}

func TestPublicNotFoundIsIndistinguishable(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.signup("alice@example.com")
	s := app.createSurvey(alice, false)

	code, _ := app.do(http.MethodPatch, fmt.Sprintf("/api/surveys/%d", s.id), gin.H{"isActive": false}, alice)
	require.Equal(t, http.StatusOK, code)

	inactive := testutil.MakeRequest(t, app.Router, http.MethodGet, "/api/surveys/public/"+s.publicID, nil, nil)
	missing := testutil.MakeRequest(t, app.Router, http.MethodGet, "/api/surveys/public/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, inactive.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String(), inactive.Body.String())

	w := testutil.MakeRequest(t, app.Router, http.MethodPost, "/api/surveys/public/"+s.publicID+"/responses", gin.H{"answers": []gin.H{}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultsStatsAndExports(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.signup("alice@example.com")
	s := app.createSurvey(alice, true)
	base := "/api/surveys/public/" + s.publicID

	for _, opt := range []uint{s.options[0], s.options[0], s.options[1]} {
		code, body := app.do(http.MethodPost, base+"/responses", gin.H{"answers": []gin.H{
			{"questionId": s.choiceQ, "selectedOptions": []uint{opt}},
		}}, nil)
		require.Equal(t, http.StatusCreated, code, "%v", body)
	}

	code, body := app.do(http.MethodGet, fmt.Sprintf("/api/surveys/%d/results", s.id), nil, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["totalResponses"])
	questions := body["questions"].([]interface{})
	choice := questions[1].(map[string]interface{})
	assert.Equal(t, float64(3), choice["totalResponses"])
	opts := choice["options"].([]interface{})
	assert.Equal(t, 66.7, opts[0].(map[string]interface{})["percentage"])
	assert.Equal(t, 33.3, opts[1].(map[string]interface{})["percentage"])
	assert.Equal(t, 0.0, opts[2].(map[string]interface{})["percentage"])

	code, body = app.do(http.MethodGet, "/api/users/stats", nil, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["totalSurveys"])
	assert.Equal(t, float64(3), body["totalResponses"])
	assert.Len(t, body["recentSurveys"], 1)

	w := testutil.MakeRequest(t, app.Router, http.MethodGet, fmt.Sprintf("/api/surveys/%d/results/export?format=csv", s.id), nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "Where?,single,A,2,66.7")

	code, body = app.do(http.MethodPost, fmt.Sprintf("/api/surveys/%d/exports", s.id), gin.H{"format": "csv"}, alice)
	require.Equal(t, http.StatusAccepted, code)
	jobID := body["jobId"].(string)

	w = testutil.MakeRequest(t, app.Router, http.MethodGet, "/api/exports/"+jobID, nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Question,Type,Answer,Count,Percentage")

	bob := app.signup("bob@example.com")
	code, _ = app.do(http.MethodGet, "/api/exports/"+jobID, nil, bob)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = app.do(http.MethodPost, fmt.Sprintf("/api/surveys/%d/exports", s.id), gin.H{"format": "pdf"}, alice)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestSubmitRateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.SubmitRatePerMin = 2 })
	alice := app.signup("alice@example.com")
	s := app.createSurvey(alice, true)
	path := "/api/surveys/public/" + s.publicID + "/responses"

	for i := 0; i < 2; i++ {
		code, _ := app.do(http.MethodPost, path, gin.H{"answers": []gin.H{}}, nil)
		require.Equal(t, http.StatusCreated, code)
	}
	code, _ := app.do(http.MethodPost, path, gin.H{"answers": []gin.H{}}, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)

	var n int64
	require.NoError(t, app.db.Model(&models.Response{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
