package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSolve(t *testing.T) {
	before := testutil.ToFloat64(SolvesTotal.WithLabelValues("Optimal", "flow"))

	Recorder{}.RecordSolve("flow", "Optimal", 20*time.Millisecond, 12, 34.5)

	assert.Equal(t, before+1, testutil.ToFloat64(SolvesTotal.WithLabelValues("Optimal", "flow")))
	assert.Equal(t, 12.0, testutil.ToFloat64(LeadsAssigned))
	assert.Equal(t, 34.5, testutil.ToFloat64(ObjectiveValue))

	Recorder{}.RecordSolve("flow", "Infeasible", time.Millisecond, 0, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(LeadsAssigned))
	assert.Equal(t, 34.5, testutil.ToFloat64(ObjectiveValue), "a failed solve keeps the last optimal objective")

	Recorder{}.RecordSolve("simplex", "Not Solved", time.Millisecond, 0, 0)
	assert.Equal(t, 34.5, testutil.ToFloat64(ObjectiveValue))
	assert.Equal(t, 2, testutil.CollectAndCount(SolveDurationSeconds))
}

func TestPush(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, Push(server.URL))
	assert.Equal(t, "/metrics/job/"+JobName, gotPath)
}

func TestPush_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.Error(t, Push(server.URL))
}
