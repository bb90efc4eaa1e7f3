package operations

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/rules"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/rs/zerolog"
)

// StateDirName is the tool's own directory at the module root. It is
// never planned, whatever the rules say.
const StateDirName = ".ksmm"

// Planner walks a source tree against a rule set
type Planner struct {
	fs       types.FS
	rules    *rules.RuleSet
	excluded []string
	logger   zerolog.Logger
}

// NewPlanner creates a planner reading through fsys
func NewPlanner(fsys types.FS, rs *rules.RuleSet) *Planner {
	if rs == nil {
		rs = rules.NewRuleSet(nil, nil)
	}
	return &Planner{
		fs:     fsys,
		rules:  rs,
		logger: logging.GetLogger("operations.planner"),
	}
}

// Exclude adds directories that are never planned, such as a release
// directory kept inside the source tree. The output root is always
// excluded.
func (p *Planner) Exclude(dirs ...string) *Planner {
	for _, dir := range dirs {
		if dir != "" {
			p.excluded = append(p.excluded, filepath.Clean(dir))
		}
	}
	return p
}

// Plan is a convenience wrapper around NewPlanner(...).Plan
func Plan(fsys types.FS, sourceRoot, outputRoot string, rs *rules.RuleSet) ([]FileOperation, error) {
	return NewPlanner(fsys, rs).Plan(sourceRoot, outputRoot)
}

// Plan returns the operations for every path under sourceRoot, depth
// first with parents before children. A missing source root yields an
// empty plan.
func (p *Planner) Plan(sourceRoot, outputRoot string) ([]FileOperation, error) {
	info, err := p.fs.Stat(sourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Warn().Str("source", sourceRoot).Msg("Source root does not exist, nothing to plan")
			return []FileOperation{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to stat source root %s", sourceRoot)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "source root %s is not a directory", sourceRoot)
	}

	excluded := map[string]bool{filepath.Clean(outputRoot): true}
	for _, dir := range p.excluded {
		excluded[dir] = true
	}

	w := &walker{planner: p, excluded: excluded}
	ops, _, err := w.walk(sourceRoot, outputRoot, "", nil)
	if err != nil {
		return nil, err
	}
	if ops == nil {
		ops = []FileOperation{}
	}

	counts := CountByKind(ops)
	p.logger.Info().
		Int("directories", counts[CreateDirectory]).
		Int("files", counts[CopyFile]).
		Int("forceIncluded", counts[RecordedForceInclude]).
		Int("ignored", counts[RecordedIgnore]).
		Msg("Plan ready")

	return ops, nil
}

type walker struct {
	planner  *Planner
	excluded map[string]bool
	// directories currently being walked, for symlink loop detection
	stack []fs.FileInfo
}

// onStack reports whether info is a directory already being walked
func (w *walker) onStack(info fs.FileInfo) bool {
	for _, dir := range w.stack {
		if os.SameFile(dir, info) {
			return true
		}
	}
	return false
}

// walk plans one directory level. shadow is set while walking inside an
// ignored directory: only force-included entries materialize there, and
// everything else is recorded as ignored under the ancestor's rule. The
// returned bool reports whether anything under dir will be written.
func (w *walker) walk(dir, outDir, relDir string, shadow *rules.Rule) ([]FileOperation, bool, error) {
	p := w.planner

	dirInfo, err := p.fs.Stat(dir)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrIO, "failed to stat directory %s", dir)
	}
	w.stack = append(w.stack, dirInfo)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrIO, "failed to read directory %s", dir)
	}

	var ops []FileOperation
	materialized := false

	for _, entry := range entries {
		name := entry.Name()
		isDir := entry.IsDir()
		src := filepath.Join(dir, name)
		dst := filepath.Join(outDir, name)
		rel := path.Join(relDir, name)

		if relDir == "" && isDir && name == StateDirName {
			p.logger.Trace().Str("path", rel).Msg("Skipping tool state directory")
			continue
		}

		// Symlinks are followed: the output tree gets a copy of the target
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := p.fs.Stat(src)
			if err != nil {
				p.logger.Warn().Err(err).Str("path", rel).Msg("Skipping dangling symlink")
				continue
			}
			if target.IsDir() && w.onStack(target) {
				p.logger.Warn().Str("path", rel).Msg("Skipping symlink that loops back to a parent directory")
				continue
			}
			isDir = target.IsDir()
		}

		if isDir && w.excluded[filepath.Clean(src)] {
			p.logger.Trace().Str("path", rel).Msg("Skipping excluded directory")
			continue
		}

		if r, ok := p.rules.MatchInclude(rel, isDir); ok {
			ops = append(ops, FileOperation{Kind: RecordedForceInclude, Rel: rel, Source: src, Destination: dst, Pattern: r.Pattern})
			sub, err := w.materialize(src, dst, rel, isDir)
			if err != nil {
				return nil, false, err
			}
			ops = append(ops, sub...)
			materialized = true
			continue
		}

		ignoredBy := shadow
		if ignoredBy == nil {
			if r, ok := p.rules.MatchIgnore(rel, isDir); ok {
				ignoredBy = &r
			}
		}

		if ignoredBy != nil {
			ops = append(ops, FileOperation{Kind: RecordedIgnore, Rel: rel, Source: src, Destination: dst, Pattern: ignoredBy.Pattern})
			if !isDir || !p.rules.HasIncludes() {
				continue
			}

			sub, subMaterialized, err := w.walk(src, dst, rel, ignoredBy)
			if err != nil {
				return nil, false, err
			}
			if subMaterialized {
				ops = append(ops, FileOperation{Kind: CreateDirectory, Rel: rel, Source: src, Destination: dst})
				materialized = true
			}
			ops = append(ops, sub...)
			continue
		}

		sub, err := w.materialize(src, dst, rel, isDir)
		if err != nil {
			return nil, false, err
		}
		ops = append(ops, sub...)
		materialized = true
	}

	return ops, materialized, nil
}

// materialize plans a path that will be written to the output tree
func (w *walker) materialize(src, dst, rel string, isDir bool) ([]FileOperation, error) {
	if !isDir {
		return []FileOperation{{Kind: CopyFile, Rel: rel, Source: src, Destination: dst}}, nil
	}

	ops := []FileOperation{{Kind: CreateDirectory, Rel: rel, Source: src, Destination: dst}}
	sub, _, err := w.walk(src, dst, rel, nil)
	if err != nil {
		return nil, err
	}
	return append(ops, sub...), nil
}
