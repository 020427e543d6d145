package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/pkg/contracts/domain"
)

func testStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string, completedAt time.Time, shareA float64) *domain.AnalysisRun {
	return &domain.AnalysisRun{
		ID:          id,
		Analyzer:    "IA",
		SourceFile:  "survey.xlsx",
		Sheet:       "Sheet1",
		Region:      "All",
		StartedAt:   completedAt.Add(-time.Second),
		CompletedAt: completedAt,
		Results: []*domain.AnalysisResult{
			{
				Analyzer:    "IA",
				BrandTotals: map[string]float64{"BRANDA": shareA, "BRANDB": 100 - shareA},
				MarketShare: []domain.BrandShare{
					{Brand: "BRANDA", Share: shareA},
					{Brand: "BRANDB", Share: 100 - shareA},
				},
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now().Truncate(time.Second), 40)
	require.NoError(t, s.SaveRun(ctx, run))

	loaded, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.ID, loaded.ID)
	assert.Equal(t, run.Analyzer, loaded.Analyzer)
	assert.Equal(t, run.SourceFile, loaded.SourceFile)
	assert.Equal(t, run.Region, loaded.Region)
	require.Len(t, loaded.Results, 1)
	assert.InDelta(t, 40, loaded.Results[0].BrandTotals["BRANDA"], 0.001)

	share, ok := loaded.Results[0].SharePercent("BRANDB")
	require.True(t, ok)
	assert.InDelta(t, 60, share, 0.001)
}

func TestGetRunNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetRun(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunDuplicateID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now(), 40)
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))
}

func TestListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute), 40)
		require.NoError(t, s.SaveRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// newest first
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-2", runs[2].ID)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestTrend(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	require.NoError(t, s.SaveRun(ctx, testRun("run-1", base, 40)))
	require.NoError(t, s.SaveRun(ctx, testRun("run-2", base.Add(time.Hour), 45)))
	require.NoError(t, s.SaveRun(ctx, testRun("run-3", base.Add(2*time.Hour), 55)))

	points, err := s.Trend(ctx, "IA", "BRANDA")
	require.NoError(t, err)
	require.Len(t, points, 3)

	// oldest first, shares in run order
	assert.Equal(t, "run-1", points[0].RunID)
	assert.InDelta(t, 40, points[0].Share, 0.001)
	assert.InDelta(t, 55, points[2].Share, 0.001)
}

func TestTrendSkipsUnrankedBrand(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, testRun("run-1", time.Now(), 40)))

	points, err := s.Trend(ctx, "IA", "BRANDX")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		run := testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute), 40)
		require.NoError(t, s.SaveRun(ctx, run))
	}

	deleted, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)

	// keep <= 0 is a no-op
	deleted, err = s.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
