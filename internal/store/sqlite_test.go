package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/glycoproteoform-builder/internal/catalog"
	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
	"github.com/StinkyLord/glycoproteoform-builder/internal/output"
	"github.com/StinkyLord/glycoproteoform-builder/internal/runner"
)

func testResult(t *testing.T) *runner.Result {
	t.Helper()
	set := catalog.Build([]model.Observation{
		{Row: 1, ProteinID: "O00754-1", SiteID: "692", GlycanID: "G28681TP"},
		{Row: 2, ProteinID: "O00754-1", SiteID: "930", GlycanID: "G41247ZX"},
		{Row: 3, ProteinID: "X", SiteID: "1"},
	})
	res, err := runner.New(10, 2).Run(context.Background(), set)
	require.NoError(t, err)
	return res
}

func proteinCount(ctx context.Context, s *Store, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proteins WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// storedProteoforms returns the proteoform lines of one protein in index order.
func storedProteoforms(ctx context.Context, s *Store, runID, protein string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT proteoform_id, glycosylation_sites FROM proteoforms WHERE run_id = ? AND protein = ? ORDER BY idx`,
		runID, protein)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id, sites string
		if err := rows.Scan(&id, &sites); err != nil {
			return nil, err
		}
		out = append(out, id+", "+sites)
	}
	return out, rows.Err()
}

func storedFailures(ctx context.Context, s *Store, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT reason FROM failures WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var reason string
		if err := rows.Scan(&reason); err != nil {
			return nil, err
		}
		out = append(out, reason)
	}
	return out, rows.Err()
}

func TestSaveRun(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	info := output.NewRunInfo("sites.csv", "test")
	require.NoError(t, s.SaveRun(ctx, info, testResult(t)))

	n, err := proteinCount(ctx, s, info.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	forms, err := storedProteoforms(ctx, s, info.ID.String(), "O00754-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"O00754-1_PF_1, 692-None 930-None",
		"O00754-1_PF_2, 692-None 930-G41247ZX",
		"O00754-1_PF_3, 692-G28681TP 930-None",
		"O00754-1_PF_4, 692-G28681TP 930-G41247ZX",
	}, forms)

	failures, err := storedFailures(ctx, s, info.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"protein X: row 3: missing glycan"}, failures)
}

func TestSaveRunTwiceKeepsRunsApart(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer s.Close()

	res := testResult(t)
	a, b := output.NewRunInfo("a.csv", "test"), output.NewRunInfo("b.csv", "test")
	require.NoError(t, s.SaveRun(ctx, a, res))
	require.NoError(t, s.SaveRun(ctx, b, res))

	n, err := proteinCount(ctx, s, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// the same run id cannot be stored twice
	assert.Error(t, s.SaveRun(ctx, a, res))
}
