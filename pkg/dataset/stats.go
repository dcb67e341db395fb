package dataset

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// Bucket is one bin of a summary: how many cases fell in, and the mean and
// sample standard deviation of the summarized metric.
type Bucket struct {
	Label string
	Count int
	Mean  float64
	Std   float64
}

type Summary struct {
	Title   string
	Buckets []Bucket
}

func (s Summary) String() string {
	var sb strings.Builder
	sb.WriteString(s.Title)
	sb.WriteString(":\n")

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tcount\tmean\tstd")
	for _, b := range s.Buckets {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", b.Label, b.Count, b.Mean, b.Std)
	}
	w.Flush()
	return sb.String()
}

type bin struct {
	label string
	// a case lands in the bin when low < v <= high
	low, high float64
}

func bucketize(bins []bin, values []float64, metrics []float64) []Bucket {
	buckets := make([]Bucket, len(bins))
	grouped := make([][]float64, len(bins))
	for i, v := range values {
		m := metrics[i]
		if math.IsNaN(m) {
			continue
		}
		for j, bn := range bins {
			if v > bn.low && v <= bn.high {
				grouped[j] = append(grouped[j], m)
				break
			}
		}
	}

	for j, bn := range bins {
		buckets[j] = Bucket{
			Label: bn.label,
			Count: len(grouped[j]),
			Mean:  mean(grouped[j]),
			Std:   std(grouped[j]),
		}
	}
	return buckets
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func std(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vs)-1))
}

var (
	inf = math.Inf(1)

	dayBins = []bin{
		{"1-4", 0, 4},
		{"5", 4, 5},
		{"6-8", 5, 8},
		{"9+", 8, inf},
	}
	mileBins = []bin{
		{"0-100", -1, 100},
		{"101-275", 100, 275},
		{"276-916", 275, 916},
		{"917+", 916, inf},
	}
	efficiencyBins = []bin{
		{"<100", math.Inf(-1), 100},
		{"100-179", 100, 180},
		{"180-220", 180, 220},
		{"221-300", 220, 300},
		{">300", 300, inf},
	}
	receiptBins = []bin{
		{"<50", -1, 50},
		{"50-599", 50, 600},
		{"600-799", 600, 800},
		{"800-999", 800, 1000},
		{"1000+", 1000, inf},
	}
)

// Summarize computes the exploratory views of the dataset: reimbursement per
// day by trip-length bucket, per mile by mileage tier, and totals by
// efficiency band and receipts band. Cases with zero miles are excluded from
// the per-mile view.
func Summarize(cases []Case) []Summary {
	n := len(cases)
	days := make([]float64, n)
	miles := make([]float64, n)
	receipts := make([]float64, n)
	milesPerDay := make([]float64, n)
	reimb := make([]float64, n)
	perDay := make([]float64, n)
	perMile := make([]float64, n)

	for i, c := range cases {
		days[i] = float64(c.Input.TripDurationDays)
		miles[i] = c.Input.MilesTraveled
		receipts[i] = c.Input.TotalReceiptsAmount
		milesPerDay[i] = miles[i] / days[i]
		reimb[i] = c.ExpectedOutput
		perDay[i] = reimb[i] / days[i]
		if miles[i] == 0 {
			perMile[i] = math.NaN()
		} else {
			perMile[i] = reimb[i] / miles[i]
		}
	}

	return []Summary{
		{"Per-Diem Buckets (reimb per day)", bucketize(dayBins, days, perDay)},
		{"Mileage Tiers (reimb per mile)", bucketize(mileBins, miles, perMile)},
		{"Efficiency Bands (total reimb)", bucketize(efficiencyBins, milesPerDay, reimb)},
		{"Receipts Bands (total reimb)", bucketize(receiptBins, receipts, reimb)},
	}
}
