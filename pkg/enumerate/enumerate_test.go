package enumerate_test

import (
	"errors"
	"testing"

	"github.com/ruizmr/8090-top-coder/pkg/enumerate"
	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

func testPools() enumerate.Pools {
	return enumerate.Pools{
		Variables:   []string{"d", "m"},
		Constants:   []float64{1, 2, 100},
		Multipliers: []float64{0.5, 2},
		RoundDigits: []int{0},
		BinaryOps:   []expr.BinaryOp{expr.AddOp, expr.SubOp, expr.MaxOp, expr.MinOp},
		ScaleOps:    []expr.ScaleOp{expr.MulOp, expr.DivOp},
	}
}

func strings(exprs []expr.Expr) []string {
	ss := make([]string, 0, len(exprs))
	for _, e := range exprs {
		ss = append(ss, e.String())
	}
	return ss
}

func TestValidate(t *testing.T) {
	cases := []struct {
		pools enumerate.Pools
		pool  string
	}{
		{enumerate.DefaultPools(), ""},
		{testPools(), ""},
		{enumerate.Pools{}, "terms"},
		{enumerate.Pools{Variables: []string{"x"},
			ScaleOps: []expr.ScaleOp{expr.MulOp}}, "multipliers"},
		{enumerate.Pools{Variables: []string{"x"},
			Multipliers: []float64{0.5, 0},
			ScaleOps:    []expr.ScaleOp{expr.DivOp}}, "multipliers"},
		{enumerate.Pools{Variables: []string{"x"}, RoundDigits: []int{-1}}, "round digits"},
	}

	for _, c := range cases {
		err := c.pools.Validate()
		if c.pool == "" {
			if err != nil {
				t.Errorf("Validate(%#v) failed with %s", c.pools, err)
			}
			continue
		}

		var ipe *enumerate.InvalidPoolError
		if !errors.As(err, &ipe) {
			t.Errorf("Validate(%#v) got %v; want InvalidPoolError", c.pools, err)
		} else if ipe.Pool != c.pool {
			t.Errorf("Validate(%#v) pool got %s want %s", c.pools, ipe.Pool, c.pool)
		}
	}
}

func TestNewInvalidPool(t *testing.T) {
	_, err := enumerate.New(enumerate.Pools{})
	var ipe *enumerate.InvalidPoolError
	if !errors.As(err, &ipe) {
		t.Fatalf("New(empty pools) got %v; want InvalidPoolError", err)
	}
}

func TestTerms(t *testing.T) {
	terms := testPools().Terms()
	want := []string{"d", "m", "1", "2", "100"}
	if len(terms) != len(want) {
		t.Fatalf("Terms() got %d terms want %d", len(terms), len(want))
	}
	for i, s := range strings(terms) {
		if s != want[i] {
			t.Errorf("Terms()[%d] got %s want %s", i, s, want[i])
		}
	}
}

// The worked scenario: variables {x}, constants {1, 2}, addition only,
// N = 3. Size 2 is empty (no unary operators), size 3 keeps exactly one
// orientation of each commutative pair with the variable ordered first.
func TestEnumerateAddOnly(t *testing.T) {
	en, err := enumerate.New(enumerate.Pools{
		Variables: []string{"x"},
		Constants: []float64{1, 2},
		BinaryOps: []expr.BinaryOp{expr.AddOp},
	})
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}

	cases := []struct {
		size int
		want []string
	}{
		{-1, nil},
		{0, nil},
		{1, []string{"x", "1", "2"}},
		{2, nil},
		{3, []string{"(x + x)", "(x + 1)", "(x + 2)", "(1 + 1)", "(1 + 2)", "(2 + 2)"}},
	}

	for _, c := range cases {
		got := strings(en.Class(c.size))
		if len(got) != len(c.want) {
			t.Errorf("Class(%d) got %v want %v", c.size, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Class(%d)[%d] got %s want %s", c.size, i, got[i], c.want[i])
			}
		}
	}

	all := en.Enumerate(3)
	if len(all) != 9 {
		t.Errorf("Enumerate(3) got %d expressions want 9", len(all))
	}

	excluded := map[string]bool{"(1 + x)": true, "(2 + x)": true, "(2 + 1)": true}
	for _, e := range all {
		if excluded[e.String()] {
			t.Errorf("Enumerate(3) contains commutative duplicate %s", e)
		}
	}
}

func TestEnumerateSizeInvariant(t *testing.T) {
	en, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}

	for s := 1; s <= 5; s++ {
		class := en.Class(s)
		if s > 1 && len(class) == 0 {
			t.Errorf("Class(%d) is empty", s)
		}
		for _, e := range class {
			if e.Size() != s {
				t.Errorf("Class(%d) contains %s with size %d", s, e, e.Size())
			}
		}
	}
}

func TestEnumerateNoDuplicates(t *testing.T) {
	en, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}

	seen := map[string]bool{}
	for _, e := range en.Enumerate(5) {
		s := e.String()
		if seen[s] {
			t.Errorf("Enumerate(5) contains %s twice", s)
		}
		seen[s] = true
	}
}

func TestEnumerateSubset(t *testing.T) {
	small, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}
	large, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}

	in := map[string]bool{}
	for _, e := range large.Enumerate(5) {
		in[e.String()] = true
	}

	for _, e := range small.Enumerate(3) {
		if !in[e.String()] {
			t.Errorf("Enumerate(3) expression %s missing from Enumerate(5)", e)
		}
	}
}

func TestEnumerateCommutativeSkip(t *testing.T) {
	en, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}

	seen := map[string]bool{}
	var binaries []*expr.Binary
	for _, e := range en.Enumerate(5) {
		seen[e.String()] = true
		if b, ok := e.(*expr.Binary); ok && b.Op.Commutative() {
			binaries = append(binaries, b)
		}
	}

	for _, b := range binaries {
		if b.Left.String() == b.Right.String() {
			continue
		}
		commuted := &expr.Binary{Op: b.Op, Left: b.Right, Right: b.Left}
		if seen[commuted.String()] {
			t.Errorf("both %s and %s enumerated", b, commuted)
		}
	}
}

// A single worker and many workers must produce identical output in
// identical order.
func TestEnumerateDeterminism(t *testing.T) {
	serial, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}
	serial.SetWorkers(1)

	parallel, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}
	parallel.SetWorkers(8)

	se := strings(serial.Enumerate(5))
	pe := strings(parallel.Enumerate(5))
	if len(se) != len(pe) {
		t.Fatalf("Enumerate(5) got %d expressions with one worker, %d with eight",
			len(se), len(pe))
	}
	for i := range se {
		if se[i] != pe[i] {
			t.Errorf("Enumerate(5)[%d] got %s with one worker, %s with eight",
				i, se[i], pe[i])
		}
	}
}

func TestStream(t *testing.T) {
	en, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}
	want := strings(en.Enumerate(4))

	en2, err := enumerate.New(testPools())
	if err != nil {
		t.Fatalf("New() failed with %s", err)
	}
	var got []string
	err = en2.Stream(4, func(e expr.Expr) error {
		got = append(got, e.String())
		return nil
	})
	if err != nil {
		t.Fatalf("Stream(4) failed with %s", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Stream(4) got %d expressions want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Stream(4)[%d] got %s want %s", i, got[i], want[i])
		}
	}

	stop := errors.New("stop")
	count := 0
	err = en2.Stream(4, func(e expr.Expr) error {
		count++
		if count == 10 {
			return stop
		}
		return nil
	})
	if err != stop {
		t.Errorf("Stream(4) got %v want stop error", err)
	}
	if count != 10 {
		t.Errorf("Stream(4) visited %d expressions after stop want 10", count)
	}
}
