package impute

import (
	"context"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// Mode fills a column with its most frequent present value. A column with no
// present values is left all-missing.
type Mode struct{ Column string }

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	return applyFiller(ctx, f, t.Column, t)
}

func (t *Mode) Fill(col cf.Column) (cf.Column, any, error) {
	return fillWith(col, func(c cf.Column) (any, bool, error) {
		v, ok := ModeOf(c)
		return v, ok, nil
	})
}
