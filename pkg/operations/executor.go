package operations

import (
	"sort"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/rs/zerolog"
)

// Executor performs a plan against a filesystem
type Executor struct {
	fs     types.FS
	dryRun bool
	logger zerolog.Logger
}

// NewExecutor creates an executor writing through fsys
func NewExecutor(fsys types.FS) *Executor {
	return &Executor{
		fs:     fsys,
		logger: logging.GetLogger("operations.executor"),
	}
}

// WithDryRun makes the executor log operations without performing them
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	e.dryRun = dryRun
	return e
}

// tier orders operations for execution. Only force-include records are
// pulled forward; everything else keeps its planned position.
func tier(k Kind) int {
	if k == RecordedForceInclude {
		return 0
	}
	return 1
}

// ExecutionOrder returns a copy of ops in the order Execute runs them.
// The sort is stable, so every CopyFile still follows the
// CreateDirectory of its parent.
func ExecutionOrder(ops []FileOperation) []FileOperation {
	ordered := make([]FileOperation, len(ops))
	copy(ordered, ops)
	sort.SliceStable(ordered, func(i, j int) bool {
		return tier(ordered[i].Kind) < tier(ordered[j].Kind)
	})
	return ordered
}

// Execute runs the plan and stops at the first failure. Nothing already
// written is rolled back.
func (e *Executor) Execute(ops []FileOperation) error {
	ordered := ExecutionOrder(ops)

	e.logger.Debug().
		Int("operations", len(ordered)).
		Bool("dryRun", e.dryRun).
		Msg("Executing plan")

	for i, op := range ordered {
		if err := e.execute(op); err != nil {
			e.logger.Error().
				Err(err).
				Int("index", i).
				Str("kind", op.Kind.String()).
				Str("path", op.Rel).
				Int("remaining", len(ordered)-i-1).
				Msg("Operation failed, aborting plan")
			return err
		}
	}
	return nil
}

func (e *Executor) execute(op FileOperation) error {
	switch op.Kind {
	case RecordedForceInclude:
		e.logger.Info().Str("path", op.Rel).Str("pattern", op.Pattern).Msg("Force-included")
		return nil

	case RecordedIgnore:
		e.logger.Debug().Str("path", op.Rel).Str("pattern", op.Pattern).Msg("Ignored")
		return nil

	case CreateDirectory:
		e.logger.Trace().Str("path", op.Rel).Msg("Creating directory")
		if e.dryRun {
			return nil
		}
		if err := e.fs.MkdirAll(op.Destination, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", op.Destination).
				WithDetail("path", op.Rel)
		}
		return nil

	case CopyFile:
		e.logger.Trace().Str("path", op.Rel).Msg("Copying file")
		if e.dryRun {
			return nil
		}
		return e.copyFile(op)

	default:
		return errors.Newf(errors.ErrInternal, "unknown operation kind %s", op.Kind)
	}
}

func (e *Executor) copyFile(op FileOperation) error {
	info, err := e.fs.Stat(op.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to stat %s", op.Source).
			WithDetail("path", op.Rel)
	}

	data, err := e.fs.ReadFile(op.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to read %s", op.Source).
			WithDetail("path", op.Rel)
	}

	if err := e.fs.WriteFile(op.Destination, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to write %s", op.Destination).
			WithDetail("path", op.Rel)
	}
	return nil
}
