package impute

import (
	"context"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// Mean fills a numeric column with the mean of its present values.
type Mean struct{ Column string }

func (t *Mean) Name() string { return "impute_mean" }

func (t *Mean) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	return applyFiller(ctx, f, t.Column, t)
}

func (t *Mean) Fill(col cf.Column) (cf.Column, any, error) {
	return fillWith(col, func(c cf.Column) (any, bool, error) {
		m, ok, err := MeanOf(c)
		return m, ok, err
	})
}
