// Package golearn converts between colfill Frames and
// github.com/sjwhitworth/golearn/base DenseInstances, so an imputed table can
// be handed straight to a golearn model.
package golearn

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sjwhitworth/golearn/base"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Numeric
// columns become FloatAttributes (missing as NaN), the others
// CategoricalAttributes (missing as ""). The last column is the class.
func ToDenseInstances(f *cf.Frame) (*base.DenseInstances, error) {
	attrs := make([]base.Attribute, len(f.Schema().Columns))
	for i, cs := range f.Schema().Columns {
		if cs.Type.Numeric() {
			attrs[i] = base.NewFloatAttribute(cs.Name)
			continue
		}
		ca := new(base.CategoricalAttribute)
		ca.SetName(cs.Name)
		attrs[i] = ca
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c := range attrs {
			switch col := f.Column(c).(type) {
			case *cf.FloatColumn:
				v, ok := col.Get(r)
				if !ok {
					v = math.NaN()
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
			case *cf.IntColumn:
				v, ok := col.Get(r)
				x := float64(v)
				if !ok {
					x = math.NaN()
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(x))
			case *cf.BoolColumn:
				s := ""
				if v, ok := col.Get(r); ok {
					s = strconv.FormatBool(v)
				}
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(s))
			case *cf.StringColumn:
				v, _ := col.Get(r)
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(v))
			default:
				return nil, fmt.Errorf("column %s: unsupported column type %T", col.Name(), col)
			}
		}
	}
	if len(attrs) > 0 {
		if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame. Float
// attributes become float columns, everything else string columns; NaN and ""
// read back as missing.
func FromDenseInstances(inst *base.DenseInstances) (*cf.Frame, error) {
	attrs := inst.AllAttributes()
	schema := cf.Schema{Columns: make([]cf.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := cf.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = cf.KindFloat
		}
		schema.Columns[i] = cf.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := cf.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			var v any
			if cs.Type == cf.KindFloat {
				if x := base.UnpackBytesToFloat(inst.Get(specs[c], r)); !math.IsNaN(x) {
					v = x
				}
			} else if s := specs[c].GetAttribute().GetStringFromSysVal(inst.Get(specs[c], r)); s != "" {
				v = s
			}
			if err := f.SetCell(r, cs.Name, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
