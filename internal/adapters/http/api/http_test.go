package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentinela-io/sentinela/internal/adapters/http/api"
	"github.com/sentinela-io/sentinela/internal/adapters/repository"
	"github.com/sentinela-io/sentinela/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	seen       map[string]bool
	unrecorded []string
	enqueueOK  bool
	enqueued   []model.Job
	results    map[string]*model.EvaluationResult
	entries    []api.Entry
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:      make(map[string]bool),
		enqueueOK: true,
		results:   make(map[string]*model.EvaluationResult),
	}
}

func (m *mockDeps) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
	m.unrecorded = append(m.unrecorded, id)
}

func (m *mockDeps) Enqueue(ctx context.Context, j model.Job) bool {
	if !m.enqueueOK {
		return false
	}
	m.enqueued = append(m.enqueued, j)
	return true
}

func (m *mockDeps) Result(ctx context.Context, jobID string) (*model.EvaluationResult, error) {
	if r, ok := m.results[jobID]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockDeps) TopN(ctx context.Context, n int) ([]api.Entry, error) {
	if n > len(m.entries) {
		n = len(m.entries)
	}
	return m.entries[:n], nil
}

func (m *mockDeps) Stats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 100).Register(context.Background(), mux)
	return mux
}

func validBody() map[string]any {
	return map[string]any{
		"region":    "BR-SP",
		"timeframe": "3m",
		"series": map[string][]float64{
			"dengue":           {10, 20, 30, 40},
			"dengue sintomas":  {8, 16, 24, 32},
			"dengue tratament": {5, 10, 15, 20},
		},
		"roles": map[string]string{
			"target":   "dengue",
			"clinical": "dengue sintomas",
		},
	}
}

func postJSON(mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPostEvaluation(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When a valid evaluation is submitted", func() {
			rec := postJSON(mux, "/evaluations", validBody())

			Convey("Then it is accepted with a generated job ID", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var ack struct {
					Status    string `json:"status"`
					JobID     string `json:"job_id"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.JobID, ShouldNotBeEmpty)
				So(ack.Duplicate, ShouldBeFalse)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Roles.Target, ShouldEqual, "dengue")
			})
		})

		Convey("When the same job ID is submitted twice", func() {
			body := validBody()
			body["job_id"] = "j-1"
			first := postJSON(mux, "/evaluations", body)
			second := postJSON(mux, "/evaluations", body)

			Convey("Then the repeat is acknowledged as a duplicate", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(second.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue is saturated", func() {
			deps.enqueueOK = false
			body := validBody()
			body["job_id"] = "j-1"
			rec := postJSON(mux, "/evaluations", body)

			Convey("Then backpressure sheds the job and rolls back dedupe", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.unrecorded, ShouldResemble, []string{"j-1"})
				So(deps.seen["j-1"], ShouldBeFalse)
			})
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/evaluations", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the target role is missing", func() {
			body := validBody()
			body["roles"] = map[string]string{}
			rec := postJSON(mux, "/evaluations", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When series lengths differ", func() {
			body := validBody()
			body["series"] = map[string][]float64{
				"dengue": {1, 2, 3},
				"other":  {1, 2},
			}
			rec := postJSON(mux, "/evaluations", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a role names a term outside the table", func() {
			body := validBody()
			body["roles"] = map[string]string{"target": "not there"}
			rec := postJSON(mux, "/evaluations", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When dates are malformed", func() {
			body := validBody()
			body["dates"] = []string{"2026-01-01", "2026-01-02", "bad", "2026-01-04"}
			rec := postJSON(mux, "/evaluations", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetEvaluation(t *testing.T) {
	Convey("Given a stored result", t, func() {
		deps := newMockDeps()
		deps.results["j-1"] = &model.EvaluationResult{JobID: "j-1", Region: "BR-SP"}
		mux := newMux(deps)

		Convey("Then it is served by job ID", func() {
			rec := get(mux, "/evaluations/j-1")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"region":"BR-SP"`)
		})

		Convey("Then an unknown ID yields 404", func() {
			rec := get(mux, "/evaluations/missing")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a nested path yields 400", func() {
			rec := get(mux, "/evaluations/j-1/extra")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetWatchboard(t *testing.T) {
	Convey("Given ranked watchboard entries", t, func() {
		deps := newMockDeps()
		deps.entries = []api.Entry{
			{Rank: 1, Region: "BR-SP", TargetTerm: "dengue", NormalizedScore: 300},
			{Rank: 2, Region: "BR-RJ", TargetTerm: "dengue", NormalizedScore: 120},
		}
		mux := newMux(deps)

		Convey("Then a limited read returns ranked rows", func() {
			rec := get(mux, "/watchboard?limit=1")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var entries []api.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Region, ShouldEqual, "BR-SP")
		})

		Convey("Then a missing limit is a bad request", func() {
			So(get(mux, "/watchboard").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then an oversized limit is rejected", func() {
			So(get(mux, "/watchboard?limit=5000").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("Then health reports ok", func() {
			rec := get(mux, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then metrics are exposed in Prometheus format", func() {
			rec := get(mux, "/metrics")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats pass through the provider", func() {
			rec := get(mux, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}
