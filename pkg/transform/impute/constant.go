package impute

import (
	"context"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

type Constant struct {
	Column string
	// use any; will be coerced per column kind
	Value any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	return applyFiller(ctx, f, t.Column, t)
}

func (t *Constant) Fill(col cf.Column) (cf.Column, any, error) {
	if t.Value == nil || cf.NullCount(col) == 0 {
		return col, nil, nil
	}
	out, err := FillNulls(col, t.Value)
	if err != nil {
		return nil, nil, err
	}
	return out, t.Value, nil
}
