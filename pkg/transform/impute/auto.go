package impute

import (
	"context"
	"fmt"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// Strategy names accepted by New.
const (
	StrategyMean     = "mean"
	StrategyMedian   = "median"
	StrategyMode     = "mode"
	StrategyConstant = "constant"
)

// Step is a Transform that fills a single column.
type Step interface {
	cf.Transform
	Filler
}

// New builds the Step for a named strategy.
func New(strategy, column string, value any) (Step, error) {
	switch strategy {
	case StrategyMean:
		return &Mean{Column: column}, nil
	case StrategyMedian:
		return &Median{Column: column}, nil
	case StrategyMode:
		return &Mode{Column: column}, nil
	case StrategyConstant:
		if value == nil {
			return nil, fmt.Errorf("constant strategy for column %s needs a value", column)
		}
		return &Constant{Column: column, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q for column %s", strategy, column)
}

// DefaultStrategy is mean for numeric kinds and mode for everything else.
func DefaultStrategy(k cf.Kind) string {
	if k.Numeric() {
		return StrategyMean
	}
	return StrategyMode
}

// Auto fills every column with its default strategy, in column order.
type Auto struct{}

func (t *Auto) Name() string { return "impute_auto" }

func (t *Auto) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	cur := f
	for _, cs := range f.Schema().Columns {
		step, err := New(DefaultStrategy(cs.Type), cs.Name, nil)
		if err != nil {
			return nil, err
		}
		if cur, err = step.Apply(ctx, cur); err != nil {
			return nil, err
		}
	}
	return cur, nil
}
