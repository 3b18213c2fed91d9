package internal

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Needs_Review collects files whose capture date could not be determined.
const reviewDir = "Needs_Review"

// Summary counts processing outcomes. Each considered file increments
// exactly one counter, so the total always equals the number of files
// considered, skipped ones included.
type Summary struct {
	Fixed                int
	RestoredFromFilename int
	RenamedOnly          int
	Skipped              int
}

func (s *Summary) add(c Classification) {
	switch c {
	case ClassFixed:
		s.Fixed++
	case ClassRestoredFromFilename:
		s.RestoredFromFilename++
	case ClassRenamedOnly:
		s.RenamedOnly++
	case ClassSkipped:
		s.Skipped++
	}
}

func (s Summary) Total() int {
	return s.Fixed + s.RestoredFromFilename + s.RenamedOnly + s.Skipped
}

// PlanEntry is one file in the output plan: where its staged bytes live and
// the archive-relative path it will be packed under.
type PlanEntry struct {
	Source         MediaFile
	OutputPath     string // archive-relative, forward slashes
	Classification Classification
	Resolved       ResolvedMetadata
}

// Organizer buckets classified files into year directories (or the review
// bucket), assigns collision-free canonical names, and keeps the summary
// counters. It must be fed results in original archive-entry order; it is
// the only owner of the collision table and the counters.
type Organizer struct {
	used    map[string]struct{} // taken output paths
	counts  map[string]int      // next collision suffix per base path
	plan    []PlanEntry
	summary Summary
}

func NewOrganizer() *Organizer {
	return &Organizer{
		used:   make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

// Add finalizes one file's classification. Skipped files are only counted;
// everything else gets exactly one slot in the plan.
func (o *Organizer) Add(file MediaFile, resolved ResolvedMetadata, class Classification) {
	o.summary.add(class)
	if class == ClassSkipped {
		return
	}

	var dir, name string
	if class == ClassRenamedOnly {
		// No trustworthy date exists, so the original name is kept.
		dir = reviewDir
		name = path.Base(file.RelPath)
	} else {
		local := resolved.Timestamp.Local()
		dir = strconv.Itoa(local.Year())
		name = local.Format("20060102_150405") + file.Ext()
	}

	o.plan = append(o.plan, PlanEntry{
		Source:         file,
		OutputPath:     o.reserve(dir, name),
		Classification: class,
		Resolved:       resolved,
	})
}

// reserve returns dir/name, appending _2, _3, ... in first-seen order when
// the name is already taken in that directory.
func (o *Organizer) reserve(dir, name string) string {
	candidate := path.Join(dir, name)
	if _, taken := o.used[candidate]; !taken {
		o.used[candidate] = struct{}{}
		return candidate
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	base := path.Join(dir, name)
	for {
		o.counts[base]++
		n := o.counts[base] + 1 // first duplicate gets _2
		candidate = path.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if _, taken := o.used[candidate]; !taken {
			o.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// Plan returns the output entries in the order they were added, which is
// the original archive-entry order.
func (o *Organizer) Plan() []PlanEntry {
	return o.plan
}

func (o *Organizer) Summary() Summary {
	return o.summary
}
