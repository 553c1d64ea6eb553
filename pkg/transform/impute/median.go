package impute

import (
	"context"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

type Median struct{ Column string }

func (t *Median) Name() string { return "impute_median" }

func (t *Median) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	return applyFiller(ctx, f, t.Column, t)
}

func (t *Median) Fill(col cf.Column) (cf.Column, any, error) {
	return fillWith(col, func(c cf.Column) (any, bool, error) {
		m, ok, err := MedianOf(c)
		return m, ok, err
	})
}
