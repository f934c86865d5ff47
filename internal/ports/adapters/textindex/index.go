package textindex

import (
	"context"
	"math"
	"sort"

	"github.com/forPelevin/podask/internal/types"
)

// Field is one scored text field of an excerpt.
type Field struct {
	Name  string
	Boost float64
	Value func(types.Excerpt) string
}

// DefaultFields weights transcript text highest, then the section label.
var DefaultFields = []Field{
	{Name: "text", Boost: 5, Value: func(e types.Excerpt) string { return e.Text }},
	{Name: "section", Boost: 3, Value: func(e types.Excerpt) string { return e.Section }},
	{Name: "episodeTitle", Boost: 1, Value: func(e types.Excerpt) string { return e.EpisodeTitle }},
	{Name: "shortTitle", Boost: 1, Value: func(e types.Excerpt) string { return e.ShortTitle }},
	{Name: "speakers", Boost: 1, Value: func(e types.Excerpt) string { return e.Speakers }},
}

type vector map[string]float64

type fieldIndex struct {
	field Field
	idf   map[string]float64
	docs  []vector
}

// Index is an in-memory TF-IDF index over excerpts. It is immutable after
// Build and safe for concurrent Search calls.
type Index struct {
	excerpts []types.Excerpt
	fields   []fieldIndex
}

// Build indexes excerpts with DefaultFields.
func Build(excerpts []types.Excerpt) *Index {
	return BuildWithFields(excerpts, DefaultFields)
}

func BuildWithFields(excerpts []types.Excerpt, fields []Field) *Index {
	idx := &Index{excerpts: append([]types.Excerpt(nil), excerpts...)}
	n := float64(len(excerpts))
	for _, f := range fields {
		tfs := make([]map[string]int, len(excerpts))
		df := make(map[string]int)
		for i, ex := range excerpts {
			tf := termCounts(tokenize(f.Value(ex)))
			for term := range tf {
				df[term]++
			}
			tfs[i] = tf
		}

		fi := fieldIndex{field: f, idf: make(map[string]float64, len(df)), docs: make([]vector, len(excerpts))}
		for term, d := range df {
			// smoothed idf, as if one extra document contained every term
			fi.idf[term] = math.Log((1+n)/(1+float64(d))) + 1
		}
		for i, tf := range tfs {
			fi.docs[i] = weigh(tf, fi.idf)
		}
		idx.fields = append(idx.fields, fi)
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.excerpts) }

// Excerpts returns the indexed excerpts in build order.
func (idx *Index) Excerpts() []types.Excerpt {
	return append([]types.Excerpt(nil), idx.excerpts...)
}

type hit struct {
	pos   int
	score float64
}

// Search returns up to topK excerpts matching every non-empty filter field,
// best score first. Excerpts sharing no term with the query are omitted;
// ties keep build order.
func (idx *Index) Search(ctx context.Context, query string, filter types.ScopeFilter, topK int) ([]types.Excerpt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	terms := tokenize(query)
	queries := make([]vector, len(idx.fields))
	for i, fi := range idx.fields {
		queries[i] = weigh(termCounts(terms), fi.idf)
	}

	var hits []hit
	for pos, ex := range idx.excerpts {
		if !matches(ex, filter) {
			continue
		}
		var score float64
		for i, fi := range idx.fields {
			score += fi.field.Boost * dot(queries[i], fi.docs[pos])
		}
		if score > 0 {
			hits = append(hits, hit{pos: pos, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]types.Excerpt, 0, len(hits))
	for _, h := range hits {
		out = append(out, idx.excerpts[h.pos])
	}
	return out, nil
}

func matches(ex types.Excerpt, f types.ScopeFilter) bool {
	if f.SourceID != "" && ex.SourceID != f.SourceID {
		return false
	}
	if f.Season != "" && ex.Season != f.Season {
		return false
	}
	if f.Kind != "" && ex.Kind != f.Kind {
		return false
	}
	return true
}

func termCounts(terms []string) map[string]int {
	out := make(map[string]int, len(terms))
	for _, t := range terms {
		out[t]++
	}
	return out
}

// weigh turns raw counts into an L2-normalised tf-idf vector. Terms unknown
// to the field vocabulary are dropped.
func weigh(tf map[string]int, idf map[string]float64) vector {
	v := make(vector, len(tf))
	var norm float64
	for term, c := range tf {
		w, ok := idf[term]
		if !ok {
			continue
		}
		x := float64(c) * w
		v[term] = x
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for term := range v {
		v[term] /= norm
	}
	return v
}

func dot(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var s float64
	for term, x := range a {
		s += x * b[term]
	}
	return s
}
