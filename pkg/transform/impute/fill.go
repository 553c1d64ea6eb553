package impute

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cast"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// Filler computes a fill value for one column and returns a filled copy of
// it along with the value used. A nil value means nothing was filled and the
// returned column is col itself.
type Filler interface {
	Fill(col cf.Column) (cf.Column, any, error)
}

// applyFiller is the shared Apply body of the single-column transforms.
func applyFiller(ctx context.Context, f *cf.Frame, name string, fl Filler) (*cf.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(name)
	if !ok {
		return f, nil
	}
	out, v, err := fl.Fill(col)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return f, nil
	}
	return f.WithColumn(out)
}

// IntFill returns the int64 an int column is filled with for x, or false when
// x is not integral or lies outside the int64 range. 2^63 is what float64
// makes of math.MaxInt64, so it maps back to math.MaxInt64: the mean of int64
// values never exceeds their maximum.
func IntFill(x float64) (int64, bool) {
	switch {
	case x != math.Trunc(x):
		return 0, false
	case x == 1<<63:
		return math.MaxInt64, true
	case x > 1<<63 || x < math.MinInt64:
		return 0, false
	}
	return int64(x), true
}

// FillNulls returns a copy of col with every missing cell set to v. An int
// column receiving a number IntFill rejects becomes a float column.
func FillNulls(col cf.Column, v any) (cf.Column, error) {
	if v == nil || cf.NullCount(col) == 0 {
		return col, nil
	}
	switch c := col.(type) {
	case *cf.FloatColumn:
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: fill value %v: %w", c.Name(), v, err)
		}
		out := c.Clone().(*cf.FloatColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, x)
			}
		}
		return out, nil
	case *cf.IntColumn:
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: fill value %v: %w", c.Name(), v, err)
		}
		n, ok := IntFill(x)
		if !ok {
			return FillNulls(c.ToFloat(), x)
		}
		out := c.Clone().(*cf.IntColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, n)
			}
		}
		return out, nil
	case *cf.BoolColumn:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: fill value %v: %w", c.Name(), v, err)
		}
		out := c.Clone().(*cf.BoolColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, b)
			}
		}
		return out, nil
	case *cf.StringColumn:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: fill value %v: %w", c.Name(), v, err)
		}
		out := c.Clone().(*cf.StringColumn)
		for i := 0; i < out.Len(); i++ {
			if out.IsNull(i) {
				out.Set(i, s)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("column %s: unsupported column type %T", col.Name(), col)
}

// fillWith is the Fill body shared by the statistic-based fillers.
func fillWith(col cf.Column, stat func(cf.Column) (any, bool, error)) (cf.Column, any, error) {
	if cf.NullCount(col) == 0 {
		return col, nil, nil
	}
	v, ok, err := stat(col)
	if err != nil || !ok {
		return col, nil, err
	}
	out, err := FillNulls(col, v)
	if err != nil {
		return nil, nil, err
	}
	return out, v, nil
}
