package enumerate

import (
	"fmt"
	"runtime"

	"github.com/google/btree"
	"golang.org/x/sync/errgroup"

	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

// Pools are the finite sets the enumerator draws from. The search space is
// closed under them: every factor and precision in an enumerated expression
// comes from these pools.
type Pools struct {
	Variables   []string
	Constants   []float64
	Multipliers []float64
	RoundDigits []int
	BinaryOps   []expr.BinaryOp
	ScaleOps    []expr.ScaleOp
}

// DefaultPools is the reimbursement-search configuration: variables d (trip
// days), m (miles), r (receipts), dollar-amount constants, and the mileage
// and per-diem rate multipliers.
func DefaultPools() Pools {
	return Pools{
		Variables: []string{"d", "m", "r"},
		Constants: []float64{
			0, 1, 2, 3, 4, 5, 10, 15, 20, 25,
			50, 75, 100, 120, 150, 180, 200, 250, 300, 400, 500, 600, 800, 1000,
		},
		Multipliers: []float64{0.01, 0.1, 0.25, 0.4, 0.58, 0.8, 1.05},
		RoundDigits: []int{0, 2},
		BinaryOps:   []expr.BinaryOp{expr.AddOp, expr.SubOp, expr.MaxOp, expr.MinOp},
		ScaleOps:    []expr.ScaleOp{expr.MulOp, expr.DivOp},
	}
}

type InvalidPoolError struct {
	Pool   string
	Reason string
}

func (err *InvalidPoolError) Error() string {
	return fmt.Sprintf("enumerate: invalid pool: %s: %s", err.Pool, err.Reason)
}

func (p Pools) Validate() error {
	if len(p.Variables) == 0 && len(p.Constants) == 0 {
		return &InvalidPoolError{Pool: "terms",
			Reason: "at least one variable or constant required"}
	}
	if len(p.ScaleOps) > 0 && len(p.Multipliers) == 0 {
		return &InvalidPoolError{Pool: "multipliers",
			Reason: "at least one multiplier required for scale operators"}
	}
	for _, k := range p.Multipliers {
		if k == 0 {
			return &InvalidPoolError{Pool: "multipliers", Reason: "zero not permitted"}
		}
	}
	for _, d := range p.RoundDigits {
		if d < 0 {
			return &InvalidPoolError{Pool: "round digits",
				Reason: fmt.Sprintf("negative precision %d not permitted", d)}
		}
	}
	return nil
}

// Terms are the size-1 leaves: one Var per configured name followed by one
// Const per pooled value, in pool order. The order is fixed so enumeration
// output is reproducible across runs.
func (p Pools) Terms() []expr.Expr {
	terms := make([]expr.Expr, 0, len(p.Variables)+len(p.Constants))
	for _, name := range p.Variables {
		terms = append(terms, &expr.Var{Name: name})
	}
	for _, v := range p.Constants {
		terms = append(terms, &expr.Const{Value: v})
	}
	return terms
}

type item struct {
	key string
	e   expr.Expr
}

func lessItems(it1, it2 item) bool {
	return it1.key < it2.key
}

func newIndex() *btree.BTreeG[item] {
	return btree.NewG[item](8, lessItems)
}

// Enumerator builds all structurally unique expressions up to a maximum AST
// size, one size class at a time. Completed classes are read-only; building
// class s only reads classes below s, so parallelism is applied within a
// class, never across classes.
type Enumerator struct {
	pools   Pools
	bySize  [][]expr.Expr // bySize[s] is the finished class of size s
	index   *btree.BTreeG[item]
	workers int
}

func New(pools Pools) (*Enumerator, error) {
	err := pools.Validate()
	if err != nil {
		return nil, err
	}

	return &Enumerator{
		pools:   pools,
		bySize:  [][]expr.Expr{nil, pools.Terms()},
		index:   newIndex(),
		workers: runtime.GOMAXPROCS(0),
	}, nil
}

func (en *Enumerator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	en.workers = n
}

// Class returns the finished size class s, building any missing classes
// first. Class(s) for s < 1 is empty. The returned slice must not be
// modified.
func (en *Enumerator) Class(s int) []expr.Expr {
	if s < 1 {
		return nil
	}
	for len(en.bySize) <= s {
		next := len(en.bySize)
		en.bySize = append(en.bySize, en.buildClass(next))
	}
	return en.bySize[s]
}

// Enumerate returns all unique expressions with size <= maxSize, in size
// order and, within a class, generation order.
func (en *Enumerator) Enumerate(maxSize int) []expr.Expr {
	var all []expr.Expr
	for s := 1; s <= maxSize; s++ {
		all = append(all, en.Class(s)...)
	}
	return all
}

// Stream visits every expression with size <= maxSize without materializing
// the topmost size class: classes below maxSize are built normally (they are
// needed to construct the top class), but top-class expressions are handed
// to visit and discarded. Visit errors abort the walk.
func (en *Enumerator) Stream(maxSize int, visit func(e expr.Expr) error) error {
	if maxSize < 1 {
		return nil
	}

	for s := 1; s < maxSize; s++ {
		for _, e := range en.Class(s) {
			err := visit(e)
			if err != nil {
				return err
			}
		}
	}
	return en.generate(maxSize, visit)
}

func (en *Enumerator) buildClass(s int) []expr.Expr {
	var class []expr.Expr
	en.generate(s, func(e expr.Expr) error {
		it := item{key: e.String(), e: e}
		if _, ok := en.index.Get(it); !ok {
			en.index.ReplaceOrInsert(it)
			class = append(class, e)
		}
		return nil
	})
	return class
}

type split struct {
	left, right int
}

// generate produces the raw constructions of size class s in deterministic
// order: unary constructions over class s-1, then binary constructions over
// every split left+right = s-1. Binary splits are built in parallel and
// emitted in split order. Classes below s must already be finished.
func (en *Enumerator) generate(s int, emit func(e expr.Expr) error) error {
	if s == 1 {
		for _, e := range en.pools.Terms() {
			err := emit(e)
			if err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range en.bySize[s-1] {
		for _, op := range en.pools.ScaleOps {
			for _, k := range en.pools.Multipliers {
				err := emit(&expr.Scale{Op: op, Operand: e, Factor: k})
				if err != nil {
					return err
				}
			}
		}
		for _, d := range en.pools.RoundDigits {
			err := emit(&expr.Round{Operand: e, Digits: d})
			if err != nil {
				return err
			}
		}
	}

	if len(en.pools.BinaryOps) == 0 {
		return nil
	}

	var splits []split
	for left := 1; left < s-1; left++ {
		splits = append(splits, split{left: left, right: s - 1 - left})
	}

	results := make([][]expr.Expr, len(splits))
	var group errgroup.Group
	group.SetLimit(en.workers)
	for i, sp := range splits {
		i, sp := i, sp
		group.Go(func() error {
			results[i] = en.buildSplit(sp)
			return nil
		})
	}
	group.Wait()

	for _, out := range results {
		for _, e := range out {
			err := emit(e)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// buildSplit constructs every binary expression for one (left, right) size
// split, skipping the redundant orientation of commutative operators: the
// commuted pair is generated from the symmetric split.
func (en *Enumerator) buildSplit(sp split) []expr.Expr {
	var out []expr.Expr
	for _, left := range en.bySize[sp.left] {
		for _, right := range en.bySize[sp.right] {
			for _, op := range en.pools.BinaryOps {
				if op.Commutative() && expr.Compare(left, right) > 0 {
					continue
				}
				out = append(out, &expr.Binary{Op: op, Left: left, Right: right})
			}
		}
	}
	return out
}
