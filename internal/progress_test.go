package internal

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestShowProgressWithSteps(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name     string
		results  []bool
		failAt   int
		wantRuns int
		wantErr  error
	}{
		{
			name:     "all steps run",
			results:  []bool{true, true, true},
			failAt:   -1,
			wantRuns: 3,
		},
		{
			name:     "unsuccessful step continues",
			results:  []bool{true, false, true},
			failAt:   -1,
			wantRuns: 3,
		},
		{
			name:     "error aborts remaining steps",
			results:  []bool{true, true, true},
			failAt:   1,
			wantRuns: 2,
			wantErr:  errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			steps := make([]ProgressStep, 0, len(tt.results))
			for i, ok := range tt.results {
				steps = append(steps, ProgressStep{
					Message: "step",
					Fn: func() (bool, error) {
						runs++
						if i == tt.failAt {
							return false, errBoom
						}
						return ok, nil
					},
				})
			}

			var out bytes.Buffer
			err := ShowProgressWithSteps(context.Background(), &out, steps)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ShowProgressWithSteps() error = %v, want %v", err, tt.wantErr)
			}
			if runs != tt.wantRuns {
				t.Errorf("ran %d steps, want %d", runs, tt.wantRuns)
			}
			if out.Len() != 0 {
				t.Errorf("non-terminal writer got output %q", out.String())
			}
		})
	}
}

func TestShowProgressWithSteps_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := ShowProgressWithSteps(ctx, &bytes.Buffer{}, []ProgressStep{{
		Message: "never",
		Fn: func() (bool, error) {
			ran = true
			return true, nil
		},
	}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if ran {
		t.Error("step ran after cancellation")
	}
}
