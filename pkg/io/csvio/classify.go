package csvio

import (
	"regexp"
	"strconv"
	"strings"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

// DefaultMissingValues are the cell texts read as missing when
// ReaderOptions.MissingValues is nil. They match the defaults of common
// dataframe libraries so files produced by them read back the same way.
var DefaultMissingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

type missingSet map[string]struct{}

func newMissingSet(vals []string) missingSet {
	if vals == nil {
		vals = DefaultMissingValues
	}
	m := make(missingSet, len(vals)+1)
	for _, v := range vals {
		m[strings.TrimSpace(v)] = struct{}{}
	}
	// an empty field is always missing
	m[""] = struct{}{}
	return m
}

func (m missingSet) has(raw string) bool {
	_, ok := m[strings.TrimSpace(raw)]
	return ok
}

type tally struct {
	present int
	nums    int
	ints    int
	bools   int
}

// Classifier decides the kind of every column from all of its values.
// Observe is called once per record; Kinds may be called at any point.
type Classifier struct {
	missing missingSet
	tallies []tally
}

func NewClassifier(ncol int, missingValues []string) *Classifier {
	return &Classifier{missing: newMissingSet(missingValues), tallies: make([]tally, ncol)}
}

func (c *Classifier) Observe(rec []string) {
	for i := range c.tallies {
		if i >= len(rec) || c.missing.has(rec[i]) {
			continue
		}
		t := &c.tallies[i]
		t.present++
		v := strings.TrimSpace(rec[i])
		if numre.MatchString(v) {
			// out of range literals such as 1e400 stay text
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				t.nums++
				if !strings.ContainsAny(v, ".eE") {
					if _, err := strconv.ParseInt(v, 10, 64); err == nil {
						t.ints++
					}
				}
			}
			continue
		}
		if isBoolText(v) {
			t.bools++
		}
	}
}

// Kinds returns one kind per column. Columns with no present values are
// strings: there is nothing to average.
func (c *Classifier) Kinds() []cf.Kind {
	kinds := make([]cf.Kind, len(c.tallies))
	for i, t := range c.tallies {
		switch {
		case t.present == 0:
			kinds[i] = cf.KindString
		case t.nums == t.present && t.ints == t.present:
			kinds[i] = cf.KindInt
		case t.nums == t.present:
			kinds[i] = cf.KindFloat
		case t.bools == t.present:
			kinds[i] = cf.KindBool
		default:
			kinds[i] = cf.KindString
		}
	}
	return kinds
}

func isBoolText(v string) bool {
	lv := strings.ToLower(v)
	return lv == "true" || lv == "false"
}

// headerNames cleans header cells and disambiguates duplicates as name.1,
// name.2, ... in order of appearance.
func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	used := make(map[string]bool, len(rec))
	suffix := make(map[string]int)
	for i := range rec {
		n := strings.ToValidUTF8(rec[i], "?")
		if i == 0 {
			n = strings.TrimPrefix(n, "\ufeff")
		}
		if used[n] {
			base, k := n, suffix[n]
			for used[n] {
				k++
				n = base + "." + strconv.Itoa(k)
			}
			suffix[base] = k
		}
		used[n] = true
		names[i] = n
	}
	return names
}

func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "col_" + strconv.Itoa(i)
	}
	return names
}
