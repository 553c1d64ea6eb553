package impute

import (
	"context"
	"testing"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

func makeLargeFloatFrame(n int) *cf.Frame {
	s := cf.Schema{Columns: []cf.ColumnSchema{{Name: "x", Type: cf.KindFloat, Nullable: true}}}
	f := cf.NewFrame(s)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
	}
	c := f.Column(0).(*cf.FloatColumn)
	for i := 0; i < n; i += 2 {
		c.Set(i, float64(i%10))
	}
	return f
}

func BenchmarkImputeMean(b *testing.B) {
	base := makeLargeFloatFrame(10000)
	tform := &Mean{Column: "x"}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := tform.Apply(context.Background(), base); err != nil {
			b.Fatal(err)
		}
	}
}
