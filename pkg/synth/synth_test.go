package synth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruizmr/8090-top-coder/pkg/enumerate"
	"github.com/ruizmr/8090-top-coder/pkg/expr"
	"github.com/ruizmr/8090-top-coder/pkg/synth"
)

func TestSearchExactScale(t *testing.T) {
	// Every example satisfies expected = 2*m; the pools contain the
	// multiplier 2, so the minimal exact program is return (m * 2).
	examples := []synth.Example{
		{Env: expr.Env{"m": 1}, Expected: 2},
		{Env: expr.Env{"m": 10}, Expected: 20},
		{Env: expr.Env{"m": 150.5}, Expected: 301},
		{Env: expr.Env{"m": 0}, Expected: 0},
	}

	s, err := synth.New(synth.Config{
		Pools: enumerate.Pools{
			Variables:   []string{"m"},
			Constants:   []float64{1},
			Multipliers: []float64{2},
			BinaryOps:   []expr.BinaryOp{expr.AddOp},
			ScaleOps:    []expr.ScaleOp{expr.MulOp},
		},
		MaxExprSize: 4,
	}, nil)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), examples)
	require.NoError(t, err)
	require.NotNil(t, res.Program)

	assert.True(t, res.Exact)
	assert.False(t, res.BudgetExceeded)
	assert.Zero(t, res.Mismatches)
	assert.Equal(t, "return (m * 2)", res.Program.String())
	assert.Equal(t, 3, res.Size)
}

func TestSearchConditional(t *testing.T) {
	// expected is 100 for five-day trips and 1 otherwise; only a
	// conditional program can fit every example.
	examples := []synth.Example{
		{Env: expr.Env{"d": 5}, Expected: 100},
		{Env: expr.Env{"d": 4}, Expected: 1},
		{Env: expr.Env{"d": 9}, Expected: 1},
		{Env: expr.Env{"d": 1}, Expected: 1},
	}

	s, err := synth.New(synth.Config{
		Pools: enumerate.Pools{
			Variables: []string{"d"},
			Constants: []float64{1, 5, 100},
			BinaryOps: []expr.BinaryOp{expr.AddOp},
		},
		MaxExprSize:        1,
		MaxPredOperandSize: 1,
		MaxBranchExprSize:  1,
	}, nil)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), examples)
	require.NoError(t, err)
	require.NotNil(t, res.Program)
	require.True(t, res.Exact)

	for _, ex := range examples {
		v, err := res.Program.Eval(ex.Env)
		require.NoError(t, err)
		assert.InDelta(t, ex.Expected, v, 0.01, "program %s on %v", res.Program, ex.Env)
	}
}

func TestSearchBestEffort(t *testing.T) {
	// No exact fit exists within the pools; the search must exhaust its
	// space and return its best-effort candidate as a normal result.
	examples := []synth.Example{
		{Env: expr.Env{"m": 1}, Expected: 7},
		{Env: expr.Env{"m": 2}, Expected: 14},
	}

	s, err := synth.New(synth.Config{
		Pools: enumerate.Pools{
			Variables:   []string{"m"},
			Constants:   []float64{1},
			Multipliers: []float64{2},
			BinaryOps:   []expr.BinaryOp{expr.AddOp},
			ScaleOps:    []expr.ScaleOp{expr.MulOp},
		},
		MaxExprSize: 3,
	}, nil)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), examples)
	require.NoError(t, err)
	require.NotNil(t, res.Program)

	assert.False(t, res.Exact)
	assert.False(t, res.BudgetExceeded)
	assert.Positive(t, res.Mismatches)
	assert.Positive(t, res.Candidates)
}

func TestSearchBudget(t *testing.T) {
	examples := []synth.Example{
		{Env: expr.Env{"d": 1, "m": 1, "r": 1}, Expected: 12345.67},
	}

	s, err := synth.New(synth.Config{
		Pools:  enumerate.DefaultPools(),
		Budget: time.Nanosecond,
	}, nil)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), examples)
	require.NoError(t, err, "an elapsed budget is not an error")
	assert.True(t, res.BudgetExceeded)
	assert.False(t, res.Exact)
}

func TestSearchUnboundVariable(t *testing.T) {
	// The pools reference a variable the dataset never binds; candidates
	// using it are disqualified, not fatal, and the search still finds
	// the exact program over the bound variable.
	examples := []synth.Example{
		{Env: expr.Env{"m": 3}, Expected: 3},
		{Env: expr.Env{"m": 8}, Expected: 8},
	}

	s, err := synth.New(synth.Config{
		Pools: enumerate.Pools{
			Variables: []string{"q", "m"},
			Constants: []float64{1},
			BinaryOps: []expr.BinaryOp{expr.AddOp},
		},
		MaxExprSize: 3,
	}, nil)
	require.NoError(t, err)

	res, err := s.Search(context.Background(), examples)
	require.NoError(t, err)
	require.NotNil(t, res.Program)

	assert.True(t, res.Exact)
	assert.Equal(t, "return m", res.Program.String())
}

func TestSearchNoExamples(t *testing.T) {
	s, err := synth.New(synth.Config{Pools: enumerate.DefaultPools()}, nil)
	require.NoError(t, err)

	_, err = s.Search(context.Background(), nil)
	assert.Error(t, err)
}

func TestSearchInvalidPools(t *testing.T) {
	_, err := synth.New(synth.Config{}, nil)
	assert.Error(t, err)
}
