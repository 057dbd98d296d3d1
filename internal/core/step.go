package core

import "strings"

// Step is a stage of the daily entry flow: sales first, then losses.
type Step string

const (
	StepSales Step = "sales"
	StepLoss  Step = "loss"
)

// ParseStep maps user input to a step, defaulting to StepSales.
func ParseStep(s string) Step {
	if Step(strings.ToLower(strings.TrimSpace(s))) == StepLoss {
		return StepLoss
	}
	return StepSales
}

// Next returns the step that follows s. The loss step wraps back to sales.
func (s Step) Next() Step {
	if s == StepSales {
		return StepLoss
	}
	return StepSales
}

func (s Step) String() string {
	return string(s)
}
