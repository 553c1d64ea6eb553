package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

type NumStats struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Sum   float64
}

// Mean returns Sum/Count, NaN when there are no values.
func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int
	Nulls int
	True  int
	False int
	// FirstTrue records which value appeared first, for tie breaking.
	FirstTrue bool
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
	// Order holds distinct values by first appearance.
	Order []string
}

type ColumnProfile struct {
	Name string
	Kind cf.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Nulls returns the number of missing cells seen.
func (cp *ColumnProfile) Nulls() int {
	switch {
	case cp.Num != nil:
		return cp.Num.Nulls
	case cp.Bool != nil:
		return cp.Bool.Nulls
	case cp.Str != nil:
		return cp.Str.Nulls
	}
	return 0
}

// Collector accumulates per-column statistics over one or more frames that
// share a schema. Feeding it every chunk of a file gives the same fill values
// as computing them on the whole file at once.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema cf.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case cf.KindFloat, cf.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case cf.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) ConsumeFrame(f *cf.Frame) error {
	for ci, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			return fmt.Errorf("profile: unknown column %s", cs.Name)
		}
		cp := &c.cols[idx]
		switch col := f.Column(ci).(type) {
		case *cf.FloatColumn:
			if cp.Num == nil {
				return kindMismatch(cp, col)
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.add(v)
			}
		case *cf.IntColumn:
			if cp.Num == nil {
				return kindMismatch(cp, col)
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.add(float64(v))
			}
		case *cf.BoolColumn:
			if cp.Bool == nil {
				return kindMismatch(cp, col)
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Bool.Nulls++
					continue
				}
				if cp.Bool.Count == 0 {
					cp.Bool.FirstTrue = v
				}
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			}
		case *cf.StringColumn:
			if cp.Str == nil {
				return kindMismatch(cp, col)
			}
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if cp.Str.Freqs[v] == 0 {
					cp.Str.Order = append(cp.Str.Order, v)
				}
				cp.Str.Freqs[v]++
			}
		}
	}
	return nil
}

func (s *NumStats) add(v float64) {
	s.Count++
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.Sum += v
}

func kindMismatch(cp *ColumnProfile, col cf.Column) error {
	return fmt.Errorf("profile: column %s collected as %s, got %s", cp.Name, cp.Kind, col.Kind())
}

// Profiles returns the collected statistics in column order.
func (c *Collector) Profiles() []ColumnProfile { return c.cols }

// Profile returns the statistics of one column.
func (c *Collector) Profile(name string) (*ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.cols[i], true
}

// FillValue returns the default fill for a column: the mean for numeric
// columns, the most frequent value otherwise (ties go to the value seen
// first). ok is false when the column had no present values.
func (c *Collector) FillValue(name string) (any, bool) {
	cp, ok := c.Profile(name)
	if !ok {
		return nil, false
	}
	switch {
	case cp.Num != nil:
		if cp.Num.Count == 0 {
			return nil, false
		}
		return cp.Num.Mean(), true
	case cp.Bool != nil:
		b := cp.Bool
		if b.Count == 0 {
			return nil, false
		}
		if b.True == b.False {
			return b.FirstTrue, true
		}
		return b.True > b.False, true
	case cp.Str != nil:
		if cp.Str.Count == 0 {
			return nil, false
		}
		best, bestc := "", 0
		for _, v := range cp.Str.Order {
			if n := cp.Str.Freqs[v]; n > bestc {
				best, bestc = v, n
			}
		}
		return best, true
	}
	return nil, false
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		b.WriteString(fmt.Sprintf("- %s (%v): ", cp.Name, cp.Kind))
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				b.WriteString(fmt.Sprintf("count=0 nulls=%d\n", cp.Num.Nulls))
				continue
			}
			b.WriteString(fmt.Sprintf("count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean()))
		case cp.Bool != nil:
			b.WriteString(fmt.Sprintf("count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False))
		default:
			b.WriteString(fmt.Sprintf("count=%d nulls=%d distinct=%d\n", cp.Str.Count, cp.Str.Nulls, len(cp.Str.Order)))
			type kv struct {
				k string
				v int
			}
			arr := make([]kv, 0, len(cp.Str.Order))
			for _, k := range cp.Str.Order {
				arr = append(arr, kv{k, cp.Str.Freqs[k]})
			}
			// stable keeps first-seen order among equal counts
			sort.SliceStable(arr, func(i, j int) bool { return arr[i].v > arr[j].v })
			n := c.topK
			if n <= 0 || n > len(arr) {
				n = len(arr)
			}
			for i := 0; i < n; i++ {
				b.WriteString(fmt.Sprintf("  * %q: %d\n", arr[i].k, arr[i].v))
			}
		}
	}
	return b.String()
}
