package engine

import (
	"path"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/mapx"
)

// FilePair names the before and after paths of a matched file.
type FilePair struct {
	Src      string `json:"src"`
	Dst      string `json:"dst"`
	Language string `json:"language,omitempty"`
}

// ProjectDiff classifies the files of a before/after snapshot.
type ProjectDiff struct {
	Added    []string   `json:"added"`
	Removed  []string   `json:"removed"`
	Modified []FilePair `json:"modified"`
}

// NewProjectDiff classifies before and after paths against the file diffs.
// A path taking part in a diff is modified, including moves. Of the rest,
// paths only in before are removed and paths only in after are added; a
// path present on both sides without a diff is unchanged and not listed.
func NewProjectDiff(before, after []string, diffs []FileDiff) *ProjectDiff {
	removed := mapx.Set(before)
	added := mapx.Set(after)

	pd := &ProjectDiff{
		Modified: make([]FilePair, 0, len(diffs)),
	}

	for _, d := range diffs {
		pd.Modified = append(pd.Modified, FilePair{
			Src:      d.SrcPath,
			Dst:      d.DstPath,
			Language: Language(d.DstPath),
		})

		delete(removed, d.SrcPath)
		delete(added, d.DstPath)
	}

	for p := range removed {
		if _, ok := added[p]; ok {
			delete(removed, p)
			delete(added, p)
		}
	}

	pd.Removed = mapx.SortedKeys(removed)
	pd.Added = mapx.SortedKeys(added)

	return pd
}

// Language detects the programming language of a file from its name.
func Language(name string) string {
	return enry.GetLanguage(path.Base(name), nil)
}
