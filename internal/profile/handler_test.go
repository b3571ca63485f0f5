package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/devconnector/internal/auth"
	"github.com/redmonkez12/devconnector/internal/httputil"
)

// newTestRouter mounts the handler with a fixed acting user
func newTestRouter(h *Handler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})

	r.Get("/api/profile", h.List)
	r.Post("/api/profile", h.Upsert)
	r.Delete("/api/profile", h.Delete)
	r.Get("/api/profile/me", h.Me)
	r.Get("/api/profile/user/{user_id}", h.GetByUserID)
	r.Put("/api/profile/experience", h.AddExperience)
	r.Delete("/api/profile/experience/{exp_id}", h.RemoveExperience)
	r.Put("/api/profile/education", h.AddEducation)
	r.Delete("/api/profile/education/{edu_id}", h.RemoveEducation)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProfile(t *testing.T, rec *httptest.ResponseRecorder) Profile {
	t.Helper()

	var p Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func setup(t *testing.T) (http.Handler, *memStore, uuid.UUID) {
	t.Helper()

	svc, store := newTestService()
	userID := store.addOwner("Alice")
	return newTestRouter(NewHandler(svc, discardLogger()), userID), store, userID
}

func TestHandler_UpsertAndMe(t *testing.T) {
	router, _, userID := setup(t)

	rec := do(t, router, http.MethodGet, "/api/profile/me", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeNoProfile, decodeError(t, rec).Code)

	rec = do(t, router, http.MethodPost, "/api/profile",
		`{"status":"Developer","skills":"go, sql ,docker","company":"Acme","twitter":"@alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeProfile(t, rec)
	assert.Equal(t, []string{"go", "sql", "docker"}, p.Skills)
	assert.Equal(t, "@alice", p.Social.Twitter)
	assert.Equal(t, userID, p.User.ID)
	assert.Equal(t, "Alice", p.User.Name)

	rec = do(t, router, http.MethodGet, "/api/profile/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decodeProfile(t, rec).Company)
}

func TestHandler_Upsert_Validation(t *testing.T) {
	router, _, _ := setup(t)

	rec := do(t, router, http.MethodPost, "/api/profile", `{"company":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, body.Code)
	assert.ElementsMatch(t, []httputil.FieldError{
		{Field: "status", Msg: "Status is required"},
		{Field: "skills", Msg: "Skills are required"},
	}, body.Errors)
}

func TestHandler_BlankFieldsAreItemized(t *testing.T) {
	router, _, _ := setup(t)

	rec := do(t, router, http.MethodPost, "/api/profile", `{"status":"   ","skills":"go"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, body.Code)
	assert.Equal(t, []httputil.FieldError{{Field: "status", Msg: "Status is required"}}, body.Errors)

	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/profile", `{"status":"Developer","skills":"go"}`).Code)

	rec = do(t, router, http.MethodPut, "/api/profile/experience",
		`{"title":"  ","company":"Acme","from":"2020-01-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, body.Code)
	assert.Equal(t, []httputil.FieldError{{Field: "title", Msg: "Title is required"}}, body.Errors)

	rec = do(t, router, http.MethodPut, "/api/profile/education",
		`{"school":"MIT","degree":" ","fieldofstudy":"CS","from":"2010-09-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []httputil.FieldError{{Field: "degree", Msg: "Degree is required"}}, decodeError(t, rec).Errors)
}

func TestHandler_ListAndGetByUserID(t *testing.T) {
	router, _, userID := setup(t)

	rec := do(t, router, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/profile", `{"status":"Developer","skills":"go"}`).Code)

	rec = do(t, router, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "//avatar/Alice", list[0].User.Avatar)

	rec = do(t, router, http.MethodGet, "/api/profile/user/"+userID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		rec = do(t, router, http.MethodGet, "/api/profile/user/"+id, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, id)
		body := decodeError(t, rec)
		assert.Equal(t, "Profile not found", body.Error)
		assert.Equal(t, httputil.CodeProfileNotFound, body.Code)
	}
}

func TestHandler_Experience(t *testing.T) {
	router, _, _ := setup(t)

	rec := do(t, router, http.MethodPut, "/api/profile/experience",
		`{"title":"Dev","company":"Acme","from":"2020-01-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeNoProfile, decodeError(t, rec).Code)

	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/profile", `{"status":"Developer","skills":"go"}`).Code)

	rec = do(t, router, http.MethodPut, "/api/profile/experience", `{"company":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []httputil.FieldError{
		{Field: "title", Msg: "Title is required"},
		{Field: "from", Msg: "From date is required"},
	}, decodeError(t, rec).Errors)

	rec = do(t, router, http.MethodPut, "/api/profile/experience",
		`{"title":"Dev","company":"Acme","from":"yesterday"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from", decodeError(t, rec).Errors[0].Field)

	rec = do(t, router, http.MethodPut, "/api/profile/experience",
		`{"title":"Dev","company":"Acme","from":"2018-01-01","to":"2020-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPut, "/api/profile/experience",
		`{"title":"Lead","company":"Initech","from":"2020-02-01","current":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	p := decodeProfile(t, rec)
	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Lead", p.Experience[0].Title)
	assert.True(t, p.Experience[0].Current)
	require.NotNil(t, p.Experience[1].To)

	rec = do(t, router, http.MethodDelete, "/api/profile/experience/"+p.Experience[1].ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	p = decodeProfile(t, rec)
	require.Len(t, p.Experience, 1)
	assert.Equal(t, "Lead", p.Experience[0].Title)

	rec = do(t, router, http.MethodDelete, "/api/profile/experience/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeProfile(t, rec).Experience, 1)

	rec = do(t, router, http.MethodDelete, "/api/profile/experience/42", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidEntryID, decodeError(t, rec).Code)
}

func TestHandler_Education(t *testing.T) {
	router, _, _ := setup(t)

	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/profile", `{"status":"Developer","skills":"go"}`).Code)

	rec := do(t, router, http.MethodPut, "/api/profile/education", `{"school":"MIT","degree":"BSc","from":"2010-09-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []httputil.FieldError{{Field: "fieldofstudy", Msg: "Field of study is required"}}, decodeError(t, rec).Errors)

	rec = do(t, router, http.MethodPut, "/api/profile/education",
		`{"school":"MIT","degree":"BSc","fieldofstudy":"CS","from":"2010-09-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeProfile(t, rec)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "CS", p.Education[0].FieldOfStudy)

	rec = do(t, router, http.MethodDelete, "/api/profile/education/"+p.Education[0].ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeProfile(t, rec).Education)

	rec = do(t, router, http.MethodDelete, "/api/profile/education/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	router, store, userID := setup(t)

	require.Equal(t, http.StatusOK,
		do(t, router, http.MethodPost, "/api/profile", `{"status":"Developer","skills":"go"}`).Code)

	rec := do(t, router, http.MethodDelete, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"User removed"}`, rec.Body.String())
	assert.NotContains(t, store.profiles, userID)
	assert.NotContains(t, store.owners, userID)
}

func TestHandler_StoreFailureIsHidden(t *testing.T) {
	router, store, _ := setup(t)
	store.err = errors.New("pq: connection refused")

	rec := do(t, router, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
}

func TestHandler_RequiresUser(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/profile/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
