package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmorley/scorecast/pkg/util/predict"
)

func testRow(date, home, away string, fthg, ftag int) predict.RawRow {
	return predict.RawRow{
		"Date":     date,
		"HomeTeam": home,
		"AwayTeam": away,
		"FTHG":     strconv.Itoa(fthg),
		"FTAG":     strconv.Itoa(ftag),
		"HST":      "4", "AST": "3",
		"HC": "5", "AC": "4",
		"HF": "10", "AF": "11",
		"HY": "1", "AY": "2",
		"HR": "0", "AR": "0",
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	snap, err := predict.BuildSnapshot([]predict.RawRow{
		testRow("01/01/20", "Arsenal", "Chelsea", 2, 0),
		testRow("08/01/20", "Arsenal", "Burnley", 1, 1),
		testRow("15/01/20", "Chelsea", "Burnley", 3, 1),
	})
	require.NoError(t, err)

	svc := predict.GetPredictionService()
	require.NoError(t, svc.Train(snap))
	return NewServer(svc)
}

func TestIndexPage(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<select name=\"homeTeam\">")
	assert.Contains(t, body, "Arsenal")
	assert.Contains(t, body, "Burnley")
}

func TestFormPredict(t *testing.T) {
	srv := testServer(t)

	form := url.Values{"homeTeam": {"Arsenal"}, "awayTeam": {"Burnley"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "class=\"result\"")
}

func TestAPIPredict(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/predict?homeTeam=Arsenal&awayTeam=Burnley", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var p predict.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Arsenal", p.HomeTeam)
	assert.GreaterOrEqual(t, p.HomeGoals, 0)
	assert.GreaterOrEqual(t, p.AwayGoals, 0)
}

func TestAPIPredictUnknownTeam(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/predict?homeTeam=Arsnal&awayTeam=Burnley", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Contains(t, e.Error, "unknown team")
	assert.Contains(t, e.Error, "Arsenal", "Rejection should suggest the closest fitted name")
}

func TestAPIPredictMissingParams(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/predict?homeTeam=Arsenal", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPITeams(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Arsenal", "Burnley", "Chelsea"}, body["teams"])
}

func TestAPIHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["teams"])
	assert.EqualValues(t, 3, body["matches"])
}
