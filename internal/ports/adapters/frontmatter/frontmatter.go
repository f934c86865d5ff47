package frontmatter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/podask/internal/ports"
	"github.com/forPelevin/podask/internal/types"
)

var reFrontmatter = regexp.MustCompile(`(?s)^---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|$)`)

// skipFiles are never treated as episodes.
var skipFiles = map[string]struct{}{
	"_template.md": {},
}

// Source reads episode markdown files whose YAML frontmatter carries the
// transcript, clips and episode metadata.
type Source struct {
	dir string
}

func New(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) Documents(ctx context.Context) ([]ports.LoadedDocument, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	out := make([]ports.LoadedDocument, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := p
		if rel, err := filepath.Rel(s.dir, p); err == nil {
			name = filepath.ToSlash(rel)
		}
		doc, err := ParseFile(p)
		doc.Name = name
		out = append(out, ports.LoadedDocument{Name: name, Doc: doc, Err: err})
	}
	return out, nil
}

func (s *Source) files() ([]string, error) {
	fi, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("episodes directory not found: %s", s.dir)
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("episodes path is not a directory: %s", s.dir)
	}

	var paths []string
	err = filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		if _, skip := skipFiles[d.Name()]; skip {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk episodes directory: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .md files found in %s", s.dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func ParseFile(path string) (types.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, err
	}
	return Parse(b)
}

// Parse decodes one episode file. The markdown body after the frontmatter is
// ignored.
func Parse(b []byte) (types.Document, error) {
	m := reFrontmatter.FindSubmatch(b)
	if m == nil {
		return types.Document{}, errors.New("could not find YAML frontmatter")
	}

	var raw episodeYAML
	if err := yaml.Unmarshal(m[1], &raw); err != nil {
		return types.Document{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return raw.document(), nil
}

type episodeYAML struct {
	Title   string `yaml:"title"`
	Short   string `yaml:"short"`
	Season  scalar `yaml:"season"`
	Episode scalar `yaml:"episode"`
	IDs     struct {
		YouTube string `yaml:"youtube"`
	} `yaml:"ids"`
	QuotableClips []clipYAML  `yaml:"quotableClips"`
	Transcript    []entryYAML `yaml:"transcript"`
}

type clipYAML struct {
	Name        string  `yaml:"name"`
	StartOffset float64 `yaml:"startOffset"`
	EndOffset   float64 `yaml:"endOffset"`
	URL         string  `yaml:"url"`
}

type entryYAML struct {
	Header *string  `yaml:"header"`
	Line   *string  `yaml:"line"`
	Sec    *float64 `yaml:"sec"`
	Who    string   `yaml:"who"`
}

// scalar accepts numbers or strings ("8" and 8 both decode to "8").
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	if n.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(strings.TrimSpace(n.Value))
	return nil
}

func (r episodeYAML) document() types.Document {
	doc := types.Document{
		Meta: types.DocumentMeta{
			Title:      r.Title,
			ShortTitle: r.Short,
			SourceID:   r.IDs.YouTube,
			Season:     string(r.Season),
			EpisodeNum: string(r.Episode),
		},
	}
	for _, c := range r.QuotableClips {
		doc.Clips = append(doc.Clips, types.Clip{
			Name:         c.Name,
			StartSeconds: seconds(c.StartOffset),
			EndSeconds:   seconds(c.EndOffset),
			URL:          c.URL,
		})
	}
	for _, e := range r.Transcript {
		switch {
		case e.Header != nil:
			h := strings.TrimSpace(*e.Header)
			if h == "" {
				continue
			}
			doc.Entries = append(doc.Entries, types.Entry{Header: h})
		case e.Line != nil:
			var sec int
			if e.Sec != nil {
				sec = seconds(*e.Sec)
			}
			doc.Entries = append(doc.Entries, types.Entry{
				Speaker: strings.TrimSpace(e.Who),
				Text:    *e.Line,
				Seconds: sec,
			})
		}
	}
	return doc
}

// maxSeconds caps offsets so the int conversion is defined on every platform.
const maxSeconds = math.MaxInt32

func seconds(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= maxSeconds:
		return maxSeconds
	}
	return int(f)
}
