// Package progress implements the per-folder progress documents from spec
// section 3 ("Per-folder Zipper progress", "Per-folder Unzipper progress")
// and the load-modify-save update pattern from section 4.4 / design note 9:
// there is no compare-and-swap on the Staging Store, so every mutation must
// go through a component-held lock across a fresh read, an in-memory
// mutation, and the write-back.
package progress

// OrderedSet is an insertion-ordered string set bounded to a maximum size,
// used for FolderProgress.CompletedFiles (spec section 3: "the set is
// bounded to a maximum size... by dropping oldest entries -- this is a
// memory/size control, not a correctness control").
type OrderedSet struct {
	order []string
	has   map[string]bool
	cap   int
}

func NewOrderedSet(capacity int) *OrderedSet {
	return &OrderedSet{has: make(map[string]bool), cap: capacity}
}

func (s *OrderedSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	return s.has[v]
}

// Add inserts v if not already present, evicting the oldest entry first if
// the set is already at capacity. A capacity <= 0 means unbounded.
func (s *OrderedSet) Add(v string) {
	if s.has[v] {
		return
	}
	if s.cap > 0 && len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.has, oldest)
	}
	s.order = append(s.order, v)
	s.has[v] = true
}

func (s *OrderedSet) AddAll(vs []string) {
	for _, v := range vs {
		s.Add(v)
	}
}

func (s *OrderedSet) Items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *OrderedSet) Len() int { return len(s.order) }

// PlainSet is an unbounded string set used for CompletedKeys and
// LargeFilesDone: spec section 3 notes CompletedKeys alone is sufficient to
// avoid duplicate uploads, so it is never pruned.
type PlainSet struct {
	has map[string]bool
}

func NewPlainSet() *PlainSet {
	return &PlainSet{has: make(map[string]bool)}
}

func (s *PlainSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	return s.has[v]
}

func (s *PlainSet) Add(v string) { s.has[v] = true }

func (s *PlainSet) Items() []string {
	out := make([]string, 0, len(s.has))
	for k := range s.has {
		out = append(out, k)
	}
	return out
}

func (s *PlainSet) Len() int { return len(s.has) }

// FolderProgress is the Zipper's per-folder document (spec section 3),
// keyed at <prefix>_progress/<san(folder)>_progress.json.
type FolderProgress struct {
	CompletedKeys  *PlainSet   `json:"-"`
	CompletedFiles *OrderedSet `json:"-"`
	LargeFilesDone *PlainSet   `json:"-"`
	FolderComplete bool        `json:"folder_complete"`
}

// folderProgressWire is the JSON-serializable shape; unknown keys are
// ignored and missing fields deserialize to empty/false (spec section 6).
type folderProgressWire struct {
	CompletedKeys  []string `json:"completed_keys"`
	CompletedFiles []string `json:"completed_files"`
	LargeFilesDone []string `json:"large_files_done"`
	FolderComplete bool     `json:"folder_complete"`
}

func NewFolderProgress(completedFilesCap int) *FolderProgress {
	return &FolderProgress{
		CompletedKeys:  NewPlainSet(),
		CompletedFiles: NewOrderedSet(completedFilesCap),
		LargeFilesDone: NewPlainSet(),
	}
}

// UnzipProgress is the Unzipper's per-folder document (spec section 3),
// keyed at <prefix>_progress/<san(folder)>_unzip_progress.json.
type UnzipProgress struct {
	ProcessedKeys  *PlainSet
	FolderComplete bool
}

type unzipProgressWire struct {
	ProcessedKeys  []string `json:"processed_keys"`
	FolderComplete bool     `json:"folder_complete"`
}

func NewUnzipProgress() *UnzipProgress {
	return &UnzipProgress{ProcessedKeys: NewPlainSet()}
}
