package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	"github.com/wdm0006/colfill/pkg/profile"
	imp "github.com/wdm0006/colfill/pkg/transform/impute"
)

// genSource generates random chunks with a fixed share of missing cells.
type genSource struct {
	schema cf.Schema
	remain int
	chunk  int
	missp  float64
	rnd    *rand.Rand
}

func (g *genSource) Next() (*cf.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := g.chunk
	if n > g.remain {
		n = g.remain
	}
	g.remain -= n
	f := cf.NewFrame(g.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		for c, cs := range g.schema.Columns {
			if g.rnd.Float64() < g.missp {
				continue
			}
			switch col := f.Column(c).(type) {
			case *cf.FloatColumn:
				col.Set(i, g.rnd.Float64()*100)
			case *cf.IntColumn:
				col.Set(i, int64(g.rnd.Intn(100)))
			case *cf.BoolColumn:
				col.Set(i, g.rnd.Intn(2) == 0)
			case *cf.StringColumn:
				col.Set(i, cs.Name+"_"+string(rune('a'+g.rnd.Intn(8))))
			}
		}
	}
	return f, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(f *cf.Frame) error { b.rows += f.Rows(); return nil }
func (b *blackholeSink) Close() error            { return nil }

func main() {
	var (
		rows    = flag.Int("rows", 5_000_000, "total rows to generate")
		chunk   = flag.Int("chunk", 100_000, "rows per chunk")
		fcols   = flag.Int("float-cols", 4, "number of float columns")
		icols   = flag.Int("int-cols", 2, "number of int columns")
		scols   = flag.Int("string-cols", 2, "number of string columns")
		missp   = flag.Float64("missing", 0.05, "probability of missing values in each cell")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	var cols []cf.ColumnSchema
	for i := 0; i < *fcols; i++ {
		cols = append(cols, cf.ColumnSchema{Name: fmt.Sprintf("f%d", i), Type: cf.KindFloat, Nullable: true})
	}
	for i := 0; i < *icols; i++ {
		cols = append(cols, cf.ColumnSchema{Name: fmt.Sprintf("i%d", i), Type: cf.KindInt, Nullable: true})
	}
	for i := 0; i < *scols; i++ {
		cols = append(cols, cf.ColumnSchema{Name: fmt.Sprintf("s%d", i), Type: cf.KindString, Nullable: true})
	}
	schema := cf.Schema{Columns: cols}
	newSource := func() *genSource {
		return &genSource{schema: schema, remain: *rows, chunk: *chunk, missp: *missp, rnd: rand.New(rand.NewSource(*seed))}
	}

	runtime.GC()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()

	// same seed, so the statistics pass sees the rows the fill pass fills
	prof := profile.NewCollector(schema, 0)
	src := newSource()
	for {
		f, err := src.Next()
		if err == io.EOF {
			break
		}
		if err := prof.ConsumeFrame(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	statsElapsed := time.Since(start)

	p := cf.NewPipeline()
	for _, cs := range schema.Columns {
		if v, ok := prof.FillValue(cs.Name); ok {
			p.Add(&imp.Constant{Column: cs.Name, Value: v})
		}
	}
	sink := &blackholeSink{}
	if _, err := cf.RunStream(context.Background(), p, newSource(), sink); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(*rows) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  *rows,
		"elapsed_ms":            elapsed.Milliseconds(),
		"stats_ms":              statsElapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"cols":                  map[string]int{"float": *fcols, "int": *icols, "string": *scols},
		"chunk":                 *chunk,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", sink.rows)
	fmt.Printf("Elapsed: %s (statistics %s)\n", elapsed, statsElapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
