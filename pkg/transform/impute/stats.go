package impute

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// presentFloats collects the non-missing values of a numeric column.
func presentFloats(col cf.Column) ([]float64, error) {
	vals := make([]float64, 0, col.Len())
	switch c := col.(type) {
	case *cf.FloatColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				vals = append(vals, v)
			}
		}
	case *cf.IntColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				vals = append(vals, float64(v))
			}
		}
	default:
		return nil, fmt.Errorf("column %s is %s, not numeric", col.Name(), col.Kind())
	}
	return vals, nil
}

// MeanOf returns the arithmetic mean of the present values of a numeric
// column. ok is false when every value is missing.
func MeanOf(col cf.Column) (mean float64, ok bool, err error) {
	vals, err := presentFloats(col)
	if err != nil || len(vals) == 0 {
		return 0, false, err
	}
	return stat.Mean(vals, nil), true, nil
}

// MedianOf returns the median of the present values of a numeric column,
// averaging the two middle values for an even count.
func MedianOf(col cf.Column) (median float64, ok bool, err error) {
	vals, err := presentFloats(col)
	if err != nil || len(vals) == 0 {
		return 0, false, err
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2, true, nil
	}
	return vals[mid], true, nil
}

// ModeOf returns the most frequent present value of any column. Ties go to
// the value that appears first. ok is false when every value is missing.
func ModeOf(col cf.Column) (any, bool) {
	switch c := col.(type) {
	case *cf.StringColumn:
		return modeOf(c.Len(), c.Get)
	case *cf.BoolColumn:
		return modeOf(c.Len(), c.Get)
	case *cf.IntColumn:
		return modeOf(c.Len(), c.Get)
	case *cf.FloatColumn:
		return modeOf(c.Len(), c.Get)
	}
	return nil, false
}

func modeOf[T comparable](n int, get func(int) (T, bool)) (any, bool) {
	counts := make(map[T]int)
	var order []T
	for i := 0; i < n; i++ {
		v, ok := get(i)
		if !ok {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return nil, false
	}
	best, bestc := order[0], counts[order[0]]
	for _, v := range order[1:] {
		if counts[v] > bestc {
			best, bestc = v, counts[v]
		}
	}
	return best, true
}
