package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lineup/internal/adapters/http/api"
	"github.com/okian/lineup/internal/domain/analysis"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type sampleSnapshot struct{}

func (sampleSnapshot) All(context.Context) []model.Player { return model.SamplePlayers() }

// mockDependencies runs real analyses over the sample players and records
// everything else.
type mockDependencies struct {
	analyzer       *analysis.Analyzer
	requested      [][]string
	history        []types.HistoryEntry
	historyErr     error
	historyEnabled bool
	historyLimit   int
	lastLimit      int
	reloadCount    int
	reloadErr      error
	stats          map[string]interface{}
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		analyzer:       analysis.NewAnalyzer(sampleSnapshot{}, scoring.NewScorer()),
		historyEnabled: true,
		historyLimit:   50,
		reloadCount:    8,
		stats:          map[string]interface{}{"players": 8, "source": "builtin"},
	}
}

func (m *mockDependencies) Players(context.Context) []model.Player { return model.SamplePlayers() }

func (m *mockDependencies) Analyze(ctx context.Context, names []string) types.Result {
	m.requested = append(m.requested, names)
	return m.analyzer.Analyze(ctx, names)
}

func (m *mockDependencies) History(_ context.Context, limit int) ([]types.HistoryEntry, error) {
	m.lastLimit = limit
	return m.history, m.historyErr
}

func (m *mockDependencies) HistoryEnabled() bool { return m.historyEnabled }

func (m *mockDependencies) MaxHistoryLimit() int { return m.historyLimit }

func (m *mockDependencies) Reload(context.Context) (int, error) { return m.reloadCount, m.reloadErr }

func (m *mockDependencies) GetStats() map[string]interface{} { return m.stats }

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDependencies()
		server := api.NewServer(deps)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			routes := []struct {
				method, path, body string
			}{
				{http.MethodGet, "/healthz", ""},
				{http.MethodGet, "/stats", ""},
				{http.MethodGet, "/api/players", ""},
				{http.MethodPost, "/api/analyze", `{"players":["Josh Allen"]}`},
				{http.MethodGet, "/api/history?limit=5", ""},
				{http.MethodPost, "/api/reload", ""},
			}

			Convey("Then every route should answer 200", func() {
				for _, rt := range routes {
					var req *http.Request
					if rt.body != "" {
						req = httptest.NewRequest(rt.method, rt.path, strings.NewReader(rt.body))
					} else {
						req = httptest.NewRequest(rt.method, rt.path, nil)
					}
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, req)
					So(w.Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("And unregistered paths should not be found", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When registering on a nil mux", func() {
			Convey("Then it should panic", func() {
				So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
			})
		})
	})
}

func TestPlayersHandler(t *testing.T) {
	Convey("Given a players handler", t, func() {
		handler := api.NewPlayersHandler(newMockDependencies())

		Convey("When listing players", func() {
			w := serve(handler.HandleGetPlayers, http.MethodGet, "/api/players", "")

			Convey("Then all six fields of every record should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var raw []map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &raw), ShouldBeNil)
				So(len(raw), ShouldEqual, 8)
				So(raw[0]["name"], ShouldEqual, "Patrick Mahomes")
				So(raw[0]["opponent_def_rank"], ShouldEqual, float64(28))
				So(len(raw[0]), ShouldEqual, 6)
			})
		})

		Convey("When using the wrong method", func() {
			w := serve(handler.HandleGetPlayers, http.MethodPost, "/api/players", "")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAnalyzeHandler(t *testing.T) {
	Convey("Given an analyze handler", t, func() {
		deps := newMockDependencies()
		handler := api.NewAnalyzeHandler(deps)

		Convey("When analyzing four players", func() {
			body := `{"players":["Josh Allen","Patrick Mahomes","CeeDee Lamb","Tyreek Hill"]}`
			w := serve(handler.HandleAnalyze, http.MethodPost, "/api/analyze", body)

			Convey("Then the ranked result should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res types.Result
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.TotalSelected, ShouldEqual, 4)
				So(res.AnalyzedPlayers[0].Name, ShouldEqual, "Josh Allen")
				So(res.AnalyzedPlayers[0].Score, ShouldEqual, 21.51)
				So(res.AnalyzedPlayers[1].Recommendation, ShouldEqual, model.Start)
				So(res.AnalyzedPlayers[2].Recommendation, ShouldEqual, model.Bench)
			})

			Convey("And the response should use the documented keys", func() {
				var raw map[string]json.RawMessage
				So(json.Unmarshal(w.Body.Bytes(), &raw), ShouldBeNil)
				So(raw, ShouldContainKey, "analyzed_players")
				So(raw, ShouldContainKey, "total_selected")
			})
		})

		Convey("When the request is empty in any form", func() {
			for i, body := range []string{"", "   ", `{}`, `{"players":null}`, `{"players":[]}`} {
				w := serve(handler.HandleAnalyze, http.MethodPost, "/api/analyze", body)

				Convey(fmt.Sprintf("Then an empty array should be returned for body %d", i), func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Body.String(), ShouldContainSubstring, `"analyzed_players":[]`)
					So(w.Body.String(), ShouldContainSubstring, `"total_selected":0`)
				})
			}
		})

		Convey("When only unknown names are requested", func() {
			w := serve(handler.HandleAnalyze, http.MethodPost, "/api/analyze", `{"players":["Nobody"]}`)

			Convey("Then nothing should be selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"total_selected":0`)
			})
		})

		Convey("When the body is malformed", func() {
			for _, body := range []string{`{invalid`, `{"players":"Josh Allen"}`, `{"players":[1,2]}`, `["Josh Allen"]`} {
				w := serve(handler.HandleAnalyze, http.MethodPost, "/api/analyze", body)

				Convey("Then a bad request envelope should be returned for "+body, func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					var eb errorBody
					So(json.Unmarshal(w.Body.Bytes(), &eb), ShouldBeNil)
					So(eb.Code, ShouldEqual, "bad_request")
					So(eb.Message, ShouldStartWith, "api.analyze")
				})
			}
			So(deps.requested, ShouldBeEmpty)
		})

		Convey("When using the wrong method", func() {
			w := serve(handler.HandleAnalyze, http.MethodGet, "/api/analyze", "")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHistoryHandler(t *testing.T) {
	Convey("Given a history handler", t, func() {
		deps := newMockDependencies()
		deps.history = []types.HistoryEntry{{ID: "a1", Requested: []string{"Josh Allen"}}}
		handler := api.NewHistoryHandler(deps)

		Convey("When requesting with a valid limit", func() {
			w := serve(handler.HandleGetHistory, http.MethodGet, "/api/history?limit=3", "")

			Convey("Then the entries should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 3)
				var entries []types.HistoryEntry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(entries[0].ID, ShouldEqual, "a1")
			})
		})

		Convey("When the limit is omitted", func() {
			serve(handler.HandleGetHistory, http.MethodGet, "/api/history", "")

			Convey("Then the default limit should be used", func() {
				So(deps.lastLimit, ShouldEqual, 10)
			})
		})

		Convey("When there is no history yet", func() {
			deps.history = nil
			w := serve(handler.HandleGetHistory, http.MethodGet, "/api/history", "")

			Convey("Then an empty array should be returned", func() {
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When the limit is invalid", func() {
			bad := serve(handler.HandleGetHistory, http.MethodGet, "/api/history?limit=abc", "")
			zero := serve(handler.HandleGetHistory, http.MethodGet, "/api/history?limit=0", "")
			big := serve(handler.HandleGetHistory, http.MethodGet, "/api/history?limit=51", "")

			Convey("Then it should return bad request", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(zero.Code, ShouldEqual, http.StatusBadRequest)
				So(big.Code, ShouldEqual, http.StatusBadRequest)
				So(big.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When history is disabled", func() {
			deps.historyEnabled = false
			w := serve(handler.HandleGetHistory, http.MethodGet, "/api/history", "")

			Convey("Then it should return history_disabled", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "history_disabled")
			})
		})

		Convey("When the store fails", func() {
			deps.historyErr = errors.New("db gone")
			w := serve(handler.HandleGetHistory, http.MethodGet, "/api/history", "")

			Convey("Then it should return an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "db gone")
			})
		})
	})
}

func TestReloadHandler(t *testing.T) {
	Convey("Given a reload handler", t, func() {
		deps := newMockDependencies()
		handler := api.NewReloadHandler(deps)

		Convey("When the reload succeeds", func() {
			w := serve(handler.HandleReload, http.MethodPost, "/api/reload", "")

			Convey("Then the new count should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"players":8`)
			})
		})

		Convey("When the reload fails", func() {
			deps.reloadErr = errors.New("feed down")
			w := serve(handler.HandleReload, http.MethodPost, "/api/reload", "")

			Convey("Then reload_failed should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var eb errorBody
				So(json.Unmarshal(w.Body.Bytes(), &eb), ShouldBeNil)
				So(eb.Code, ShouldEqual, "reload_failed")
				So(eb.Message, ShouldContainSubstring, "feed down")
			})
		})

		Convey("When using the wrong method", func() {
			w := serve(handler.HandleReload, http.MethodGet, "/api/reload", "")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsAndHealthHandlers(t *testing.T) {
	Convey("Given stats and health handlers", t, func() {
		stats := api.NewStatsHandler(newMockDependencies())
		health := api.NewHealthHandler()

		Convey("When requesting stats", func() {
			w := serve(stats.HandleStats, http.MethodGet, "/stats", "")

			Convey("Then the provider's stats should be encoded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got["source"], ShouldEqual, "builtin")
			})
		})

		Convey("When requesting health", func() {
			w := serve(health.HandleHealth, http.MethodGet, "/healthz", "")

			Convey("Then lineup metrics should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "lineup_")
			})
		})

		Convey("When using the wrong method", func() {
			So(serve(stats.HandleStats, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(health.HandleHealth, http.MethodPost, "/healthz", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
