// internal/store/store_test.go
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"pathoscope/pkg/api"
)

func boolPtr(b bool) *bool { return &b }

func TestSampleIsPaired(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   bool
	}{
		{"explicit true", Sample{Paired: boolPtr(true)}, true},
		{"explicit false", Sample{Paired: boolPtr(false), Files: []any{1, 2}}, false},
		{"legacy two files", Sample{Files: []any{1, 2}}, true},
		{"legacy one file", Sample{Files: []any{1}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sample.IsPaired())
		})
	}
}

func TestExceedsSizeLimit(t *testing.T) {
	small := bson.M{"diagnosis": []api.HitV1{{ID: "ref1", Pi: 0.5}}}

	tooLarge, err := exceedsSizeLimit(small)
	require.NoError(t, err)
	assert.False(t, tooLarge)

	big := bson.M{"blob": strings.Repeat("x", maxDocumentSize)}

	tooLarge, err = exceedsSizeLimit(big)
	require.NoError(t, err)
	assert.True(t, tooLarge)
}

func TestWriteFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis", "pathoscope.json")

	results := api.AnalysisResultsV1{
		Ready:     true,
		ReadCount: 100,
		Diagnosis: []api.HitV1{{ID: "ref1", Pi: 0.75, Reads: 75}},
	}

	require.NoError(t, writeFallback(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got api.AnalysisResultsV1
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, results, got)
}

func TestLogDispatcher(t *testing.T) {
	d := LogDispatcher{}

	assert.NoError(t, d.Dispatch(context.Background(), "analyses", "update", "a1"))
}

// TestStoreRoundTrip exercises the live database layer. It only runs
// when PATHOSCOPE_TEST_MONGO_URI points at a reachable MongoDB.
func TestStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("PATHOSCOPE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PATHOSCOPE_TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	s, err := Open(ctx, uri, "pathoscope_test", nil)
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.db.Collection("samples").InsertOne(ctx, bson.M{
		"_id":     "sample1",
		"paired":  false,
		"quality": bson.M{"count": 1000},
	})
	require.NoError(t, err)
	defer s.db.Collection("samples").DeleteOne(ctx, bson.M{"_id": "sample1"})

	sample, err := s.Sample(ctx, "sample1")
	require.NoError(t, err)
	assert.Equal(t, 1000, sample.Quality.Count)
	assert.False(t, sample.IsPaired())

	require.NoError(t, s.CommitResults(ctx, "analysis1", api.AnalysisResultsV1{
		Ready:     true,
		ReadCount: 1000,
	}, filepath.Join(t.TempDir(), "pathoscope.json")))
	defer s.RemoveAnalysis(ctx, "analysis1")
}
