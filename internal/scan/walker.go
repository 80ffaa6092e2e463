package scan

import (
	"iter"
	"log"
	"path/filepath"

	"github.com/spf13/afero"

	"cleanstore/internal/config"
	"cleanstore/internal/fsops"
	"cleanstore/internal/logging"
)

// Candidate is a file selected for deletion. Size is read from the
// directory listing, before anything destructive happens to the file.
type Candidate struct {
	Path   string
	Size   int64
	Depth  int
	Reason Reason
}

// WalkOptions controls a tree walk
type WalkOptions struct {
	Targets []string
	Ignore  *IgnoreMatcher

	// MaxDepth bounds descent. The root is depth 0 and a directory at depth d
	// is entered only when d < MaxDepth, so MaxDepth 1 lists the root alone.
	// Zero or less means config.DefaultMaxDepth.
	MaxDepth int

	FollowSymlinks bool // descend into symlinks that resolve to directories

	// OnSkip is called for every directory that could not be listed.
	OnSkip func(path string, err error)
}

// WalkStats summarizes a finished walk
type WalkStats struct {
	DirsVisited  int
	DirsSkipped  int // listing failed
	DirsIgnored  int
	DirsTooDeep  int
	FilesMatched int
}

// searchItem is a directory waiting to be listed
type searchItem struct {
	path  string
	depth int
}

// Walker performs a bounded, iterative directory walk.
type Walker struct {
	fs      afero.Fs
	opts    WalkOptions
	targets map[string]struct{}
	logger  logging.Leveled
	stats   WalkStats
}

// NewWalker creates a Walker over fs
func NewWalker(fs afero.Fs, opts WalkOptions, logger *log.Logger) *Walker {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = config.DefaultMaxDepth
	}
	targets := make(map[string]struct{}, len(opts.Targets))
	for _, t := range opts.Targets {
		targets[t] = struct{}{}
	}
	return &Walker{
		fs:      fs,
		opts:    opts,
		targets: targets,
		logger:  logging.Wrap(logger),
	}
}

// Stats returns the counters of the most recent walk
func (w *Walker) Stats() WalkStats {
	return w.stats
}

// Walk lazily yields every file below root whose name is one of the
// targets. Unreadable directories are reported through OnSkip and skipped;
// they never end the walk. The sequence reflects the live filesystem, so it
// can be consumed once.
func (w *Walker) Walk(root string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		w.stats = WalkStats{}
		stack := []searchItem{{path: filepath.Clean(root), depth: 0}}

		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := afero.ReadDir(w.fs, item.path)
			if err != nil {
				w.stats.DirsSkipped++
				w.logger.Warn("Directory unreadable, skipping", "path", item.path, "error", err)
				if w.opts.OnSkip != nil {
					w.opts.OnSkip(item.path, err)
				}
				continue
			}
			w.stats.DirsVisited++

			for _, entry := range entries {
				path := filepath.Join(item.path, entry.Name())

				if w.isDir(path, entry.IsDir(), fsops.IsSymlink(entry)) {
					switch {
					case item.depth+1 >= w.opts.MaxDepth:
						w.stats.DirsTooDeep++
						w.logger.Debug("Depth ceiling reached", "path", path, "depth", item.depth+1)
					case w.opts.Ignore.ShouldIgnore(path):
						w.stats.DirsIgnored++
						w.logger.Debug("Ignoring directory", "path", path)
					default:
						stack = append(stack, searchItem{path: path, depth: item.depth + 1})
					}
					continue
				}

				if _, ok := w.targets[entry.Name()]; !ok {
					continue
				}
				w.stats.FilesMatched++
				cand := Candidate{
					Path:   path,
					Size:   entry.Size(),
					Depth:  item.depth,
					Reason: ReasonTargetName,
				}
				if !yield(cand) {
					return
				}
			}
		}
	}
}

func (w *Walker) isDir(path string, dir, symlink bool) bool {
	if dir {
		return true
	}
	if !symlink || !w.opts.FollowSymlinks {
		return false
	}
	info, err := w.fs.Stat(path)
	return err == nil && info.IsDir()
}
