package synth

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruizmr/8090-top-coder/pkg/enumerate"
	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

// Example is one labeled case: an evaluation environment and the output the
// winning program must reproduce.
type Example struct {
	Env      expr.Env
	Expected float64
}

type Config struct {
	Pools enumerate.Pools

	// MaxExprSize bounds the expressions tried as bare returns.
	MaxExprSize int

	// MaxPredOperandSize and MaxBranchExprSize bound the operands of a
	// conditional program's predicate and the expressions in its branches.
	MaxPredOperandSize int
	MaxBranchExprSize  int

	// Tolerance is the per-example acceptance band; a prediction within
	// Tolerance of the expected output is not a mismatch.
	Tolerance float64

	// Budget bounds the whole search; zero means no deadline. Running out
	// of budget is a normal termination: the best candidate found so far
	// is returned.
	Budget time.Duration

	Workers int
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxExprSize == 0 {
		cfg.MaxExprSize = 4
	}
	if cfg.MaxPredOperandSize == 0 {
		cfg.MaxPredOperandSize = 1
	}
	if cfg.MaxBranchExprSize == 0 {
		cfg.MaxBranchExprSize = 2
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 0.01
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg
}

// Result is the outcome of a search. BudgetExceeded reports that the budget
// elapsed before the candidate space was exhausted; the result is still the
// best candidate seen.
type Result struct {
	Program        expr.Stmt
	Mismatches     int
	AbsError       float64
	Size           int
	Exact          bool
	BudgetExceeded bool
	Candidates     int
	Elapsed        time.Duration
}

type Searcher struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Searcher, error) {
	cfg = cfg.withDefaults()
	err := cfg.Pools.Validate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Searcher{
		cfg:    cfg,
		logger: logger,
	}, nil
}

const batchSize = 4096

// score orders candidates: fewest mismatches, then least absolute error,
// then smallest program, then earliest generated. A candidate that fails to
// evaluate on any example is disqualified, never fatal.
type score struct {
	disqualified bool
	mismatches   int
	absError     float64
	size         int
	idx          int
}

func (sc score) better(other score) bool {
	if sc.disqualified != other.disqualified {
		return !sc.disqualified
	}
	if sc.mismatches != other.mismatches {
		return sc.mismatches < other.mismatches
	}
	if sc.absError != other.absError {
		return sc.absError < other.absError
	}
	if sc.size != other.size {
		return sc.size < other.size
	}
	return sc.idx < other.idx
}

func (s *Searcher) scoreOne(stmt expr.Stmt, examples []Example) score {
	sc := score{size: stmt.Size()}
	for _, ex := range examples {
		v, err := stmt.Eval(ex.Env)
		if err != nil {
			return score{disqualified: true, size: sc.size}
		}

		abs := math.Abs(v - ex.Expected)
		if abs > s.cfg.Tolerance || math.IsNaN(abs) {
			sc.mismatches++
		}
		sc.absError += abs
	}
	return sc
}

// scoreBatch scores candidates in parallel; every candidate's evaluation is
// independent of every other's.
func (s *Searcher) scoreBatch(batch []expr.Stmt, examples []Example) score {
	if len(batch) <= batchSize/8 || s.cfg.Workers == 1 {
		best := score{disqualified: true}
		for i, stmt := range batch {
			sc := s.scoreOne(stmt, examples)
			sc.idx = i
			if sc.better(best) {
				best = sc
			}
		}
		return best
	}

	chunk := (len(batch) + s.cfg.Workers - 1) / s.cfg.Workers
	bests := make([]score, s.cfg.Workers)
	var group errgroup.Group
	for w := 0; w < s.cfg.Workers; w++ {
		w := w
		group.Go(func() error {
			best := score{disqualified: true}
			for i := w * chunk; i < len(batch) && i < (w+1)*chunk; i++ {
				sc := s.scoreOne(batch[i], examples)
				sc.idx = i
				if sc.better(best) {
					best = sc
				}
			}
			bests[w] = best
			return nil
		})
	}
	group.Wait()

	best := score{disqualified: true}
	for _, sc := range bests {
		if sc.better(best) {
			best = sc
		}
	}
	return best
}

// Search enumerates candidate programs in increasing size and scores each
// against every example: bare returns first, then depth-1 conditionals. It
// stops early on an exact fit (every example within tolerance) and stops
// with its best effort when the budget or context expires.
func (s *Searcher) Search(ctx context.Context, examples []Example) (Result, error) {
	if len(examples) == 0 {
		return Result{}, fmt.Errorf("synth: no examples to search against")
	}

	if s.cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Budget)
		defer cancel()
	}

	start := time.Now()
	en, err := enumerate.New(s.cfg.Pools)
	if err != nil {
		return Result{}, err
	}
	en.SetWorkers(s.cfg.Workers)

	res := Result{Mismatches: len(examples) + 1}
	best := score{disqualified: true}

	flush := func(batch []expr.Stmt) {
		if len(batch) == 0 {
			return
		}
		sc := s.scoreBatch(batch, examples)
		res.Candidates += len(batch)
		if sc.better(best) {
			best = sc
			res.Program = batch[sc.idx]
			res.Mismatches = sc.mismatches
			res.AbsError = sc.absError
			res.Size = sc.size
			s.logger.Debug("synth: new best candidate", "program", res.Program,
				"mismatches", sc.mismatches, "abs_error", sc.absError, "size", sc.size)
		}
	}
	exact := func() bool {
		return res.Program != nil && !best.disqualified && best.mismatches == 0
	}
	done := func() Result {
		res.Exact = exact()
		res.Elapsed = time.Since(start)
		return res
	}

	// Phase 1: bare returns, smallest expressions first.
	for size := 1; size <= s.cfg.MaxExprSize; size++ {
		batch := make([]expr.Stmt, 0, batchSize)
		for _, e := range en.Class(size) {
			batch = append(batch, &expr.Return{Expr: e})
			if len(batch) == batchSize {
				flush(batch)
				batch = batch[:0]
				if err := ctx.Err(); err != nil {
					res.BudgetExceeded = true
					return done(), nil
				}
			}
		}
		flush(batch)

		s.logger.Info("synth: scored return candidates", "expr_size", size,
			"candidates", res.Candidates, "best_mismatches", res.Mismatches,
			"best_abs_error", res.AbsError)
		if exact() {
			return done(), nil
		}
		if err := ctx.Err(); err != nil {
			res.BudgetExceeded = true
			return done(), nil
		}
	}

	// Phase 2: depth-1 conditionals, smallest total program size first.
	preds := s.predicates(en)
	maxPredSize := 1 + 2*s.cfg.MaxPredOperandSize
	minTotal := 1 + 3 + 2 + 2 // if + minimal pred + two minimal returns
	maxTotal := 1 + maxPredSize + 2*(1+s.cfg.MaxBranchExprSize)

	for total := minTotal; total <= maxTotal; total++ {
		batch := make([]expr.Stmt, 0, batchSize)
		for predSize := 3; predSize <= maxPredSize; predSize++ {
			for _, p := range preds[predSize] {
				for thenSize := 1; thenSize <= s.cfg.MaxBranchExprSize; thenSize++ {
					elseSize := total - 3 - predSize - thenSize
					if elseSize < 1 || elseSize > s.cfg.MaxBranchExprSize {
						continue
					}
					for _, te := range en.Class(thenSize) {
						for _, ee := range en.Class(elseSize) {
							batch = append(batch, &expr.If{
								Cond: p,
								Then: &expr.Return{Expr: te},
								Else: &expr.Return{Expr: ee},
							})
							if len(batch) == batchSize {
								flush(batch)
								batch = batch[:0]
								if err := ctx.Err(); err != nil {
									res.BudgetExceeded = true
									return done(), nil
								}
							}
						}
					}
				}
			}
		}
		flush(batch)

		s.logger.Info("synth: scored conditional candidates", "program_size", total,
			"candidates", res.Candidates, "best_mismatches", res.Mismatches,
			"best_abs_error", res.AbsError)
		if exact() {
			return done(), nil
		}
		if err := ctx.Err(); err != nil {
			res.BudgetExceeded = true
			return done(), nil
		}
	}

	return done(), nil
}

var (
	cmpOps = []expr.CmpOp{expr.LessThanOp, expr.LessEqualOp, expr.GreaterThanOp,
		expr.GreaterEqualOp, expr.EqualOp}
)

// predicates enumerates comparison predicates over expression pairs, keyed
// by predicate size. Commutative mirroring is not skipped here: (a < b) and
// (b < a) are different predicates.
func (s *Searcher) predicates(en *enumerate.Enumerator) map[int][]*expr.Pred {
	preds := map[int][]*expr.Pred{}
	for ls := 1; ls <= s.cfg.MaxPredOperandSize; ls++ {
		for rs := 1; rs <= s.cfg.MaxPredOperandSize; rs++ {
			size := 1 + ls + rs
			for _, l := range en.Class(ls) {
				for _, r := range en.Class(rs) {
					for _, op := range cmpOps {
						preds[size] = append(preds[size],
							&expr.Pred{Left: l, Op: op, Right: r})
					}
				}
			}
		}
	}
	return preds
}
