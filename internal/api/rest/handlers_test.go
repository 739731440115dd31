package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/prospect/internal/ingest"
	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/scheduler"
	"github.com/fortuna/prospect/internal/service"
	"github.com/fortuna/prospect/internal/store"
)

const profileBody = `{
	"name": "Jordan",
	"points": "19", "rebounds": 6.5, "assists": "4", "steals": "1.2",
	"blocked_shots": "0.4", "turnovers": "2.5",
	"field_goals_made": "7", "field_goals_attempted": "15",
	"age": "18", "competition_level": "college_d1_low"
}`

type fixedLoader struct {
	rosters map[store.League][]store.PlayerRecord
}

func (f fixedLoader) LoadAll(ctx context.Context, force bool) map[store.League]ingest.Result {
	out := make(map[store.League]ingest.Result)
	for _, l := range store.Leagues {
		out[l] = f.Load(ctx, l, force)
	}
	return out
}

func (f fixedLoader) Load(_ context.Context, league store.League, _ bool) ingest.Result {
	return ingest.Result{League: league, Records: f.rosters[league]}
}

type failingPinger struct{}

func (failingPinger) HealthCheck(context.Context) error { return errors.New("connection refused") }

func testRosters() map[store.League][]store.PlayerRecord {
	mk := func(id, name, team string, pts, per float64, games int, minutes float64) store.PlayerRecord {
		return store.PlayerRecord{
			PlayerID: id, Name: name, Team: team,
			Points: store.Float(pts), Rebounds: store.Float(pts / 3), Assists: store.Float(3),
			PlayerEfficiencyRating: store.Float(per), Games: store.Int(games), Minutes: store.Float(minutes),
		}
	}
	var ncaa []store.PlayerRecord
	for i := 0; i < 8; i++ {
		ncaa = append(ncaa, mk(fmt.Sprintf("c%d", i), fmt.Sprintf("Guard %d", i), "GONZ", 6+2*float64(i), 9+float64(i), 28, 800))
	}
	return map[store.League][]store.PlayerRecord{
		store.LeagueNBA: {
			mk("n1", "Jalen Green", "HOU", 19.6, 14.2, 82, 2699),
			mk("n2", "Jalen Brunson", "NY", 28.7, 23.4, 77, 2726),
			mk("n3", "Two Way", "SA", 4.1, 8.0, 25, 300),
		},
		store.LeagueNCAA: ncaa,
	}
}

func newTestServer(t *testing.T, pinger Pinger) (*httptest.Server, *metrics.Service) {
	t.Helper()
	rosters := store.NewRosterStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewService(reg)

	sched := scheduler.NewOrchestrator(fixedLoader{rosters: testRosters()}, rosters, m, &scheduler.Config{RefreshInterval: time.Hour, MaxRetries: 1})
	sched.Refresh(context.Background(), false)

	svc := service.NewProspectService(rosters, nil, m)
	h := NewHandler(svc, sched, pinger, metrics.NewHandler(reg))

	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv, m
}

func doJSON(t *testing.T, method, url, body string, out interface{}) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var body map[string]interface{}
	resp := doJSON(t, http.MethodGet, srv.URL+"/health", "", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	degraded, _ := newTestServer(t, failingPinger{})
	resp = doJSON(t, http.MethodGet, degraded.URL+"/health", "", &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestGetLevels(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var body service.Catalogue
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/levels", "", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Levels, 16)
	assert.Equal(t, store.LevelRecreational, body.Levels[0].Level)
	assert.NotEmpty(t, body.Statistics)
}

func TestRosterStatusAndRefresh(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var status scheduler.Status
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rosters/status", "", &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, status.Refreshes)
	assert.Equal(t, 3, status.Rosters.Counts[store.LeagueNBA])

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/rosters/refresh", "", &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, status.Refreshes)
}

func TestValidateProfile(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var ok struct {
		Profile store.PlayerRecord `json:"profile"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/profile/validate", profileBody, &ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, store.UserPlayerID, ok.Profile.PlayerID)
	assert.Equal(t, 46.7, *ok.Profile.FieldGoalsPercentage)

	var bad struct {
		Error  string            `json:"error"`
		Status int               `json:"status"`
		Fields map[string]string `json:"fields"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/profile/validate", `{"points": "200", "age": 30}`, &bad)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Status)
	assert.Equal(t, "Points Per Game (PPG) must be no more than 70.", bad.Fields["points"])
	assert.Contains(t, bad.Fields, "competition_level")
	assert.NotContains(t, bad.Fields, "age")

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/profile/validate", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/profile/validate", "{nope", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProbability(t *testing.T) {
	srv, m := newTestServer(t, nil)

	var body struct {
		Profile  *store.PlayerRecord `json:"profile"`
		Estimate *struct {
			NCAA      float64 `json:"ncaa"`
			NBA       float64 `json:"nba"`
			Composite float64 `json:"composite_score"`
		} `json:"estimate"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/probability", profileBody, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body.Estimate)
	assert.GreaterOrEqual(t, body.Estimate.NCAA, 0.0)
	assert.LessOrEqual(t, body.Estimate.NCAA, 100.0)
	assert.Equal(t, "Jordan", body.Profile.Name)
	assert.Equal(t, 1.0, counterValue(t, m.Evaluations.WithLabelValues(metrics.KindProbability)))

	var empty map[string]interface{}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/probability", "", &empty)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, empty["estimate"])
	assert.Nil(t, empty["profile"])
}

func TestGetComparisons(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var result service.ComparisonResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/comparisons?league=nba&top=2", profileBody, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, store.LeagueNBA, result.League)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "n1", result.Matches[0].Player.PlayerID)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/comparisons?league=ncaa&top=100", profileBody, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, service.MaxCompareTop, result.Top)
	assert.Len(t, result.Matches, 8)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/comparisons?league=wnba", profileBody, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/comparisons?top=many", profileBody, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/comparisons", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRankings(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var view service.RankingsView
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rankings?league=nba&sort=Points", "", &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, view.Players, 3)
	assert.Equal(t, "n2", view.Players[0].PlayerID)
	assert.Nil(t, view.UserRank)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/rankings?league=nba&sort=Points", profileBody, &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, view.Players, 4)
	require.NotNil(t, view.UserRank)
	assert.Equal(t, 3, *view.UserRank)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/rankings?league=nba&q=jalen", "", &view)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, view.Players, 2)
	assert.Equal(t, service.DefaultSort, view.SortBy)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/rankings?sort=Dunks", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRankingsBeforeRostersLoad(t *testing.T) {
	svc := service.NewProspectService(store.NewRosterStore(), nil, nil)
	sched := scheduler.NewOrchestrator(fixedLoader{}, store.NewRosterStore(), nil, nil)
	srv := httptest.NewServer(NewRouter(NewHandler(svc, sched, nil, nil), nil))
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rankings", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `prospect_roster_size{league="nba"} 3`)
}

func TestCORSAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/probability", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
