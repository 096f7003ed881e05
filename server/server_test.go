package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crwntec/mensaLog/intelligence"
	"github.com/crwntec/mensaLog/plan"
	"github.com/crwntec/mensaLog/store"
)

type stubEncoder struct{}

func (stubEncoder) Encode(text string) ([]float32, error) {
	// One axis per known word keeps scores deterministic.
	switch text {
	case "Rinderbraten", "braten":
		return []float32{1, 0}, nil
	case "Gemüseauflauf":
		return []float32{0, 1}, nil
	}
	return []float32{0, 0}, nil
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	braten, err := st.InsertMeal("Rinderbraten")
	require.NoError(t, err)
	auflauf, err := st.InsertMeal("Gemüseauflauf")
	require.NoError(t, err)
	require.NoError(t, st.CreateMealplan(plan.ResolvedPlan{
		Year: 2025,
		Week: 36,
		Days: map[string]plan.ResolvedDay{
			"2025-09-01": {Weekday: "Monday", Meals: map[string]int64{
				plan.CategoryTagesgericht: braten,
				plan.CategoryVegetarisch:  auflauf,
			}},
		},
	}))

	resolver := intelligence.NewResolver(stubEncoder{}, intelligence.NewEmbeddingStore(""), st, nil)
	_, err = resolver.IndexAll()
	require.NoError(t, err)

	return New(st, resolver, nil, nil), st
}

func get(t *testing.T, handler http.Handler, url string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestMealplanEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, resp := get(t, router, "/mealplan?year=2025&week=36")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var p plan.StoredPlan
	require.NoError(t, json.Unmarshal(data, &p))
	require.Equal(t, 2025, p.Year)
	require.Len(t, p.Days, 1)
	require.Equal(t, "Rinderbraten", p.Days["2025-09-01"].Meals[plan.CategoryTagesgericht].Name)
}

func TestMealplanEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, resp := get(t, router, "/mealplan?year=2025")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, resp.Success)

	rec, _ = get(t, router, "/mealplan?year=2025&week=99")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, router, "/mealplan?year=2025&week=37")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDayEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, resp := get(t, router, "/day?date=2025-09-01")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, _ = get(t, router, "/day?date=2025-09-02")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, router, "/day?date=01.09.2025")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMealEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	router := srv.Router()

	id, err := st.InsertMeal("Rinderbraten")
	require.NoError(t, err)

	rec, resp := get(t, router, "/meal?id="+strconv.FormatInt(id, 10))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, _ = get(t, router, "/meal?id=9999")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = get(t, router, "/meal?id=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, resp := get(t, router, "/meals/search?q=braten")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var hits []searchHit
	require.NoError(t, json.Unmarshal(data, &hits))
	require.Len(t, hits, 1)
	require.Equal(t, "Rinderbraten", hits[0].Name)

	rec, _ = get(t, router, "/meals/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, resp := get(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report healthReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Equal(t, "ok", report.Status)
	require.Equal(t, 2, report.Database.TotalMeals)

	rec, resp = get(t, router, "/health/simple")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
}
