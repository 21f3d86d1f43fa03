package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/famcoord/famcoord/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// cannedUnderstanding replies to each capability with fixed text.
type cannedUnderstanding struct {
	classify, extract, resolve, query string
}

func (u *cannedUnderstanding) ClassifyIntent(context.Context, string, time.Time) (string, error) {
	return u.classify, nil
}

func (u *cannedUnderstanding) ExtractAddFields(context.Context, string, []string, time.Time) (string, error) {
	return u.extract, nil
}

func (u *cannedUnderstanding) ResolveEditOrDelete(context.Context, string, []intelligence.ActivityDescription, bool, time.Time) (string, error) {
	return u.resolve, nil
}

func (u *cannedUnderstanding) AnswerQuery(context.Context, string, []string, time.Time) (string, error) {
	return u.query, nil
}

type mockLLMClient struct {
	response string
	err      error
}

func (m *mockLLMClient) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "test-model"}, nil
}

func (m *mockLLMClient) Available(context.Context) bool { return m.err == nil }

var testNow = time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)

type fixture struct {
	router     *gin.Engine
	u          *cannedUnderstanding
	llm        *mockLLMClient
	members    *repository.SQLiteMemberRepo
	activities *repository.SQLiteActivityRepo
	emma       *domain.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	members := repository.NewSQLiteMemberRepo(database)
	activities := repository.NewSQLiteActivityRepo(database)
	emma := testutil.NewTestMember("Emma")
	require.NoError(t, members.Create(context.Background(), emma))

	u := &cannedUnderstanding{}
	client := &mockLLMClient{}
	commands := service.NewCommandService(
		intelligence.NewInterpreter(u, intelligence.DefaultDefaults()),
		service.NewStoreSnapshot(members, activities),
		testutil.NewTestUoW(database),
		service.CommandOptions{Enabled: true, Location: time.UTC, Now: func() time.Time { return testNow }},
	)
	srv := New(Deps{
		Commands:   commands,
		Members:    service.NewMemberService(members),
		Activities: service.NewActivityService(activities),
		PrepTasks:  intelligence.NewPrepTaskService(client, true),
		Recommend:  intelligence.NewRecommendService(client, true),
		LLM:        client,
	})
	return &fixture{router: srv.SetupRouter(), u: u, llm: client, members: members, activities: activities, emma: emma}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestParseActivity_Add(t *testing.T) {
	f := newFixture(t)
	f.u.classify = `{"action":"add","confidence":"high"}`
	f.u.extract = `{"memberName":"Emma","title":"Soccer","date":"tomorrow","time":"3pm"}`

	w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "Soccer for Emma tomorrow at 3pm"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "add", body["action"])
	assert.Equal(t, "high", body["confidence"])
	assert.Equal(t, "needs_confirmation", body["state"])
	data := body["data"].(map[string]any)
	assert.Equal(t, f.emma.ID, data["memberId"])
	assert.Equal(t, "2025-10-25", data["date"])
	assert.Equal(t, "15:00", data["time"])
	assert.Nil(t, body["applied"])

	all, err := f.activities.List(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is written without apply")
}

func TestParseActivity_AddAndApply(t *testing.T) {
	f := newFixture(t)
	f.u.classify = `{"action":"add","confidence":"high"}`
	f.u.extract = `{"memberName":"emma","title":"Piano","date":"2025-11-01"}`

	w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "Piano for Emma on Nov 1", "apply": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "executed", body["state"])
	applied := body["applied"].(map[string]any)
	created := applied["activity"].(map[string]any)

	stored, err := f.activities.GetByID(context.Background(), created["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Piano", stored.Title)
	assert.Equal(t, "12:00", stored.Time)
}

func TestParseActivity_LowConfidenceIsNotApplied(t *testing.T) {
	f := newFixture(t)
	soccer := testutil.NewTestActivity(f.emma.ID, "Soccer")
	require.NoError(t, f.activities.Create(context.Background(), soccer))
	f.u.classify = `{"action":"delete","confidence":"low"}`
	f.u.resolve = `{"activityId":"` + soccer.ID + `"}`

	w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "remove that thing", "apply": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "needs_clarification", decode(t, w)["state"])

	_, err := f.activities.GetByID(context.Background(), soccer.ID)
	assert.NoError(t, err)
}

func TestParseActivity_UsesRequestSnapshot(t *testing.T) {
	f := newFixture(t)
	f.u.classify = `{"action":"add","confidence":"high"}`
	f.u.extract = `{"memberName":"Zed","title":"Chess"}`

	w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{
		"text":    "Chess for Zed",
		"members": []gin.H{{"id": "k9", "name": "Zed"}},
		"today":   "2025-12-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "k9", data["memberId"])
	assert.Equal(t, "2025-12-01", data["date"])
}

func TestParseActivity_ApplyRequiresStoredSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("add for a request-only member", func(t *testing.T) {
		f := newFixture(t)
		f.u.classify = `{"action":"add","confidence":"high"}`
		f.u.extract = `{"memberName":"Liam","title":"Chess","date":"2025-10-25","time":"3pm"}`

		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{
			"text":       "Chess for Liam tomorrow at 3pm",
			"members":    []gin.H{{"id": "m-client", "name": "Liam"}},
			"activities": []gin.H{},
			"apply":      true,
		})
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "apply requires the stored snapshot", decode(t, w)["error"])

		all, err := f.activities.List(ctx, repository.ActivityFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("edit of a request-only activity", func(t *testing.T) {
		f := newFixture(t)
		f.u.classify = `{"action":"edit","confidence":"high"}`
		f.u.resolve = `{"activityId":"a-client","changes":{"time":"17:00"}}`

		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{
			"text": "move Emma's swim to 5pm",
			"activities": []gin.H{{
				"id": "a-client", "memberId": f.emma.ID, "title": "Swim", "date": "2025-10-25", "time": "15:00",
			}},
			"apply": true,
		})
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "apply requires the stored snapshot", decode(t, w)["error"])
	})
}

func TestParseActivity_ErrorMapping(t *testing.T) {
	t.Run("missing text", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad today", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "x", "today": "tomorrow"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("member not found", func(t *testing.T) {
		f := newFixture(t)
		f.u.classify = `{"action":"add","confidence":"high"}`
		f.u.extract = `{"memberName":"Zoe","title":"Soccer"}`
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "Soccer for Zoe"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "MEMBER_NOT_FOUND", body["code"])
		assert.Equal(t, "Zoe", body["attemptedName"])
		assert.Equal(t, []any{"Emma"}, body["availableMembers"])
	})

	t.Run("activity not found", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.activities.Create(context.Background(), testutil.NewTestActivity(f.emma.ID, "Soccer")))
		f.u.classify = `{"action":"delete","confidence":"high"}`
		f.u.resolve = `{"activityId":"nope"}`
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "delete swimming"})
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decode(t, w)
		assert.Equal(t, "ACTIVITY_NOT_FOUND", body["code"])
		assert.NotEmpty(t, body["suggestion"])
	})

	t.Run("unparseable", func(t *testing.T) {
		f := newFixture(t)
		f.u.classify = "I am not sure"
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "blorp"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INTENT_UNPARSEABLE", decode(t, w)["code"])
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		f.u.classify = `{"action":"dance"}`
		w := f.do(t, http.MethodPost, "/api/parse-activity", gin.H{"text": "dance"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "UNKNOWN_ACTION", decode(t, w)["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/parse-activity", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSuggestPrepTasks(t *testing.T) {
	f := newFixture(t)
	f.llm.response = `["Confirm appointment", "Bring insurance card"]`

	w := f.do(t, http.MethodPost, "/api/suggest-prep-tasks", gin.H{"activityTitle": "Dentist"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Confirm appointment", "Bring insurance card"}, decode(t, w)["tasks"])

	w = f.do(t, http.MethodPost, "/api/suggest-prep-tasks", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendActivities(t *testing.T) {
	f := newFixture(t)
	f.llm.response = `[{"title":"Aquarium","venue":"Seattle Aquarium","type":"Other","durationMin":120}]`

	w := f.do(t, http.MethodPost, "/api/recommend-activities", gin.H{
		"location": "Seattle",
		"kids":     []gin.H{{"name": "Emma"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recs := decode(t, w)["recommendations"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "Aquarium", recs[0].(map[string]any)["title"])

	w = f.do(t, http.MethodPost, "/api/recommend-activities", gin.H{"location": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.llm.response = "[]"
	w = f.do(t, http.MethodPost, "/api/recommend-activities", gin.H{"location": "Seattle"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	f.llm.response = "sorry, nothing comes to mind"
	w = f.do(t, http.MethodPost, "/api/recommend-activities", gin.H{"location": "Seattle"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "INVALID_OUTPUT", decode(t, w)["code"])
}

func TestLLMFailuresMapToGatewayErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{llm.ErrTimeout, http.StatusGatewayTimeout, "TIMEOUT"},
		{fmt.Errorf("%w: no api key", llm.ErrProviderUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{fmt.Errorf("%w: 500", llm.ErrRetryExhausted), http.StatusBadGateway, "RETRY_EXHAUSTED"},
	}
	for _, tc := range cases {
		f := newFixture(t)
		f.llm.err = tc.err

		w := f.do(t, http.MethodPost, "/api/suggest-prep-tasks", gin.H{"activityTitle": "Dentist"})
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Equal(t, tc.code, decode(t, w)["code"])
	}
}

func TestMembersEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/members", gin.H{"name": "Liam", "age": 7})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	liam := decode(t, w)
	assert.NotEmpty(t, liam["id"])

	w = f.do(t, http.MethodPost, "/api/members", gin.H{"name": "liam"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/members", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["members"], 2)

	w = f.do(t, http.MethodDelete, "/api/members/Liam", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodDelete, "/api/members/Liam", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivitiesEndpoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soccer := testutil.NewTestActivity(f.emma.ID, "Soccer", testutil.WithSchedule("2025-10-25", "15:00"))
	dentist := testutil.NewTestActivity("", "Dentist", testutil.WithSchedule("2025-11-10", "09:00"))
	require.NoError(t, f.activities.Create(ctx, soccer))
	require.NoError(t, f.activities.Create(ctx, dentist))

	w := f.do(t, http.MethodGet, "/api/activities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	w = f.do(t, http.MethodGet, "/api/activities?member="+f.emma.ID, nil)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = f.do(t, http.MethodGet, "/api/activities?from=2025-11-01&to=2025-11-30", nil)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = f.do(t, http.MethodGet, "/api/activities?from=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/activities/"+soccer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Soccer", decode(t, w)["title"])

	w = f.do(t, http.MethodDelete, "/api/activities/"+soccer.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/api/activities/"+soccer.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSAndHealth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/parse-activity", nil)
	req.Header.Set("Origin", "https://family.example")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["llmAvailable"])
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	r := gin.New()
	r.Use(cors([]string{"https://family.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://family.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://family.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLLMFeaturesUnavailable(t *testing.T) {
	database := testutil.NewTestDB(t)
	members := repository.NewSQLiteMemberRepo(database)
	router := New(Deps{
		Members:    service.NewMemberService(members),
		Activities: service.NewActivityService(repository.NewSQLiteActivityRepo(database)),
	}).SetupRouter()
	f := &fixture{router: router}

	w := f.do(t, http.MethodPost, "/api/parse-activity", map[string]any{"text": "Soccer for Emma"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodPost, "/api/suggest-prep-tasks", map[string]any{"activityTitle": "Dentist"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodPost, "/api/recommend-activities", map[string]any{"location": "Seattle"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["llmAvailable"])
}
