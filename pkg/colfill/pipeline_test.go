package colfill_test

import (
	"context"
	"testing"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	imp "github.com/wdm0006/colfill/pkg/transform/impute"
)

func TestPipeline(t *testing.T) {
	s := cf.Schema{Columns: []cf.ColumnSchema{{Name: "x", Type: cf.KindFloat, Nullable: true}, {Name: "s", Type: cf.KindString, Nullable: true}}}
	f := cf.NewFrame(s)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "x", 1.0)
	_ = f.SetCell(2, "x", 3.0)
	_ = f.SetCell(0, "s", "Foo")
	// row 1 left nulls

	p := cf.NewPipeline().Add(&imp.Mean{Column: "x"}).Add(&imp.Mode{Column: "s"})
	if p.Len() != 2 {
		t.Fatalf("pipeline has %d steps", p.Len())
	}
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	colX, _ := out.ColumnByName("x")
	fx := colX.(*cf.FloatColumn)
	if v, ok := fx.Get(1); !ok || v != 2 {
		t.Fatalf("mean fill got %v, %v", v, ok)
	}
	colS, _ := out.ColumnByName("s")
	ss := colS.(*cf.StringColumn)
	if s2, ok := ss.Get(2); !ok || s2 != "Foo" {
		t.Fatalf("mode fill got %q", s2)
	}
	// the input frame is untouched
	if in, _ := f.ColumnByName("x"); !in.IsNull(1) {
		t.Fatal("pipeline modified its input")
	}
}

func TestPipelineStopsWhenCanceled(t *testing.T) {
	f := cf.NewFrame(cf.Schema{Columns: []cf.ColumnSchema{{Name: "x", Type: cf.KindFloat, Nullable: true}}})
	f.AppendNullRow()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cf.NewPipeline().Add(&imp.Mean{Column: "x"}).Run(ctx, f); err == nil {
		t.Fatal("expected context error")
	}
}
