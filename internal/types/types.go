package types

// Document is one parsed transcript file: ordered entries plus episode
// metadata and the curated clips that came with it.
type Document struct {
	Name    string
	Meta    DocumentMeta
	Entries []Entry
	Clips   []Clip
}

type DocumentMeta struct {
	Title      string
	ShortTitle string
	SourceID   string
	Season     string
	EpisodeNum string
}

// Entry is either a section marker (Header set) or a spoken line.
type Entry struct {
	Header string

	Speaker string
	Text    string
	Seconds int
}

func (e Entry) IsHeader() bool { return e.Header != "" }

// Lines returns the spoken lines of the document, section markers dropped.
func (d Document) Lines() []Entry {
	out := make([]Entry, 0, len(d.Entries))
	for _, e := range d.Entries {
		if !e.IsHeader() {
			out = append(out, e)
		}
	}
	return out
}

type Clip struct {
	Name         string
	StartSeconds int
	EndSeconds   int
	URL          string
}

type Kind string

const (
	KindHeader Kind = "header"
	KindWindow Kind = "window"
)

type Excerpt struct {
	Kind     Kind   `json:"kind"`
	Section  string `json:"section"`
	Text     string `json:"text"`
	Speakers string `json:"speakers"`

	EpisodeTitle string `json:"episode_title"`
	ShortTitle   string `json:"short_title"`
	SourceID     string `json:"source_id"`
	Season       string `json:"season"`
	EpisodeNum   string `json:"episode_num"`

	StartSeconds int    `json:"start_seconds"`
	Timestamp    string `json:"timestamp"`
	DeepLink     string `json:"deep_link"`
}

// ScopeFilter narrows a query. Empty fields match everything.
type ScopeFilter struct {
	SourceID string
	Season   string
	Kind     Kind
}

func (f ScopeFilter) WithKind(k Kind) ScopeFilter {
	f.Kind = k
	return f
}

type RetrievalResult struct {
	Excerpt Excerpt
	Rank    int
}
