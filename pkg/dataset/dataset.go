package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

// Case is one labeled example from the public cases file.
type Case struct {
	Input          Input   `json:"input"`
	ExpectedOutput float64 `json:"expected_output"`
}

type Input struct {
	TripDurationDays    int     `json:"trip_duration_days"`
	MilesTraveled       float64 `json:"miles_traveled"`
	TotalReceiptsAmount float64 `json:"total_receipts_amount"`
}

// Env binds the case's input fields to the search variables d, m, and r.
func (c Case) Env() expr.Env {
	return expr.Env{
		"d": float64(c.Input.TripDurationDays),
		"m": c.Input.MilesTraveled,
		"r": c.Input.TotalReceiptsAmount,
	}
}

func Read(r io.Reader) ([]Case, error) {
	var cases []Case
	err := json.NewDecoder(r).Decode(&cases)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s", err)
	}
	return cases, nil
}

func Load(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s", err)
	}
	defer f.Close()

	return Read(f)
}
