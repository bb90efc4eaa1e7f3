// Package build runs the module build pipeline: stamp the version code,
// resolve rules, plan and materialize the output tree, package it,
// write the update manifest and sign the archive.
package build

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ksmm-dev/ksmm/pkg/archive"
	"github.com/ksmm-dev/ksmm/pkg/config"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/manifest"
	"github.com/ksmm-dev/ksmm/pkg/metadata"
	"github.com/ksmm-dev/ksmm/pkg/operations"
	"github.com/ksmm-dev/ksmm/pkg/paths"
	"github.com/ksmm-dev/ksmm/pkg/rules"
	"github.com/ksmm-dev/ksmm/pkg/signer"
	"github.com/ksmm-dev/ksmm/pkg/stamp"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/ksmm-dev/ksmm/pkg/vcs"
	"github.com/rs/zerolog"
)

// Reasons reported in Result.SigningSkipped
const (
	SkipDisabled = "signing disabled in settings"
	SkipNoKey    = "no signing key found"
)

// Options are the pipeline's collaborators
type Options struct {
	FS     types.FS
	Paths  paths.Paths
	Config *config.Config
	Signer signer.Signer
	VCS    vcs.Reader
	// Now defaults to time.Now
	Now func() time.Time
	// DryRun plans and logs the build without writing anything. The
	// pipeline stops after the executor stage.
	DryRun bool
}

// Result summarizes a build, including a failed one
type Result struct {
	BuildID  string
	Stage    Stage
	FailedAt Stage

	VersionCode  int
	Metadata     metadata.Props
	Operations   map[operations.Kind]int
	Entries      int
	ArchivePath  string
	ManifestPath string
	SignedPath   string

	// SigningSkipped is set when no signing was attempted
	SigningSkipped string
	DryRun         bool
}

// Pipeline runs one build. It is not reusable.
type Pipeline struct {
	opts   Options
	stage  Stage
	result *Result
	logger zerolog.Logger
}

// New creates a pipeline in StageIdle
func New(opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.VCS == nil {
		opts.VCS = vcs.Static{}
	}

	id := uuid.NewString()
	return &Pipeline{
		opts:   opts,
		stage:  StageIdle,
		result: &Result{BuildID: id, Stage: StageIdle, DryRun: opts.DryRun},
		logger: logging.GetLogger("build").With().Str("buildId", id).Logger(),
	}
}

// Stage returns the current stage
func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) advance(next Stage) {
	p.logger.Debug().
		Str("from", p.stage.String()).
		Str("to", next.String()).
		Msg("Stage transition")
	p.stage = next
	p.result.Stage = next
}

// fail records that the step leading out of the current stage failed
func (p *Pipeline) fail(err error) (*Result, error) {
	failedAt := p.stage + 1
	p.logger.Error().
		Err(err).
		Str("stage", failedAt.String()).
		Msg("Build failed")
	p.result.FailedAt = failedAt
	p.stage = StageFailed
	p.result.Stage = StageFailed
	return p.result, err
}

// Run executes every stage in order. The returned Result is never nil;
// on failure it describes how far the build got.
func (p *Pipeline) Run() (*Result, error) {
	if p.stage != StageIdle {
		return p.result, errors.Newf(errors.ErrInternal, "pipeline already ran (stage %s)", p.stage)
	}

	done := logging.LogOperationStart(p.logger, "build")
	defer done()

	cfg := p.opts.Config
	fsys := p.opts.FS
	pp := p.opts.Paths

	// Settings that would make the reset destroy sources
	outputDir := pp.Resolve(cfg.Build.OutputDir)
	releaseDir := pp.Resolve(cfg.Build.ReleaseDir)
	if err := checkOutputDir(fsys, pp, outputDir, releaseDir); err != nil {
		return p.fail(err)
	}

	// Metadata
	if _, err := metadata.Load(fsys, pp.ModuleProp()); err != nil {
		return p.fail(err)
	}
	p.advance(StageMetadataLoaded)

	// Version stamp
	code, err := p.stampVersion()
	if err != nil {
		return p.fail(err)
	}
	p.result.VersionCode = code
	p.advance(StageVersionStamped)

	// Snapshot used by every later stage
	props, err := p.reloadMetadata(code)
	if err != nil {
		return p.fail(err)
	}
	p.result.Metadata = props
	p.advance(StageMetadataReloaded)

	// Rules
	ruleSet, err := rules.Load(fsys, pp.Resolve(cfg.Build.IgnoreFile), pp.BuildConf())
	if err != nil {
		return p.fail(err)
	}
	if len(cfg.Build.ExtraIgnore) > 0 {
		ruleSet.Append(pp.SettingsFile(), cfg.Build.ExtraIgnore...)
	}
	p.advance(StageRulesLoaded)

	// Plan into a fresh output tree
	if !p.opts.DryRun {
		if err := resetDir(fsys, outputDir); err != nil {
			return p.fail(err)
		}
	}
	ops, err := operations.NewPlanner(fsys, ruleSet).
		Exclude(releaseDir).
		Plan(pp.Root(), outputDir)
	if err != nil {
		return p.fail(err)
	}
	p.result.Operations = operations.CountByKind(ops)
	p.advance(StagePlanned)

	// Materialize
	if err := operations.NewExecutor(fsys).WithDryRun(p.opts.DryRun).Execute(ops); err != nil {
		return p.fail(err)
	}
	p.advance(StageExecuted)

	if p.opts.DryRun {
		p.advance(StageDone)
		p.logger.Info().
			Int("versionCode", code).
			Int("operations", len(ops)).
			Msg("Dry run complete, nothing written")
		return p.result, nil
	}

	// Package, then describe the release
	dest := filepath.Join(releaseDir, archive.Name(props.ID(), props.VersionCode()))
	pkg, err := archive.NewWriter(fsys).Package(outputDir, dest)
	if err != nil {
		return p.fail(err)
	}
	p.result.ArchivePath = pkg.Path
	p.result.Entries = len(pkg.Entries)

	m, err := manifest.New(props, p.opts.VCS, cfg.Manifest.URLs())
	if err != nil {
		return p.fail(err)
	}
	if err := manifest.Write(fsys, pp.UpdateManifest(), m); err != nil {
		return p.fail(err)
	}
	p.result.ManifestPath = pp.UpdateManifest()
	p.advance(StagePackaged)

	// Sign
	if err := p.sign(pkg.Path); err != nil {
		return p.fail(err)
	}
	p.advance(StageSigningAttempted)

	p.advance(StageDone)
	p.logger.Info().
		Str("archive", p.result.ArchivePath).
		Int("versionCode", code).
		Msg("Build complete")
	return p.result, nil
}

func (p *Pipeline) sign(archivePath string) error {
	cfg := p.opts.Config

	if !cfg.Signer.Enabled || p.opts.Signer == nil {
		p.result.SigningSkipped = SkipDisabled
		p.logger.Info().Msg("Signing disabled, skipping")
		return nil
	}

	keyDir := p.opts.Paths.Resolve(cfg.Signer.KeyDir)
	key, err := signer.FindKey(p.opts.FS, keyDir)
	if err != nil {
		return err
	}
	if key == "" {
		p.result.SigningSkipped = SkipNoKey
		p.logger.Info().Str("keyDir", keyDir).Msg("No signing key, skipping")
		return nil
	}

	signed, err := p.opts.Signer.Sign(archivePath, key)
	if err != nil {
		return err
	}
	p.result.SignedPath = signed
	return nil
}

// stampVersion writes the new versionCode into module.prop. A dry run
// only computes it.
func (p *Pipeline) stampVersion() (int, error) {
	if p.opts.DryRun {
		return stamp.Code(p.opts.Now()), nil
	}
	return stamp.Bump(p.opts.FS, p.opts.Paths.ModuleProp(), p.opts.Now())
}

// reloadMetadata reads module.prop back after stamping. A dry run
// renders the stamped content in memory instead.
func (p *Pipeline) reloadMetadata(code int) (metadata.Props, error) {
	propPath := p.opts.Paths.ModuleProp()
	if !p.opts.DryRun {
		return metadata.Load(p.opts.FS, propPath)
	}

	data, err := p.opts.FS.ReadFile(propPath)
	if err != nil {
		return metadata.Props{}, errors.Wrapf(err, errors.ErrIO, "failed to read %s", propPath)
	}
	return metadata.Parse(stamp.Render(string(data), code)), nil
}

// checkOutputDir rejects an output directory whose reset would delete
// the module root, the tool state directory or the release directory.
// Outside the project, a directory holding a module.prop is taken to be
// another module's sources.
func checkOutputDir(fsys types.FS, pp paths.Paths, outputDir, releaseDir string) error {
	protected := []struct {
		dir  string
		what string
	}{
		{pp.Root(), "the module root"},
		{pp.StateDir(), "the ksmm state directory"},
		{releaseDir, "the release directory"},
	}
	for _, prot := range protected {
		if within(outputDir, prot.dir) {
			return errors.Newf(errors.ErrInvalidInput, "output directory %s would remove %s %s", outputDir, prot.what, prot.dir).
				WithDetail("hint", "set build.output_dir to a dedicated directory such as .ksmm/build")
		}
	}

	if within(pp.Root(), outputDir) {
		return nil
	}
	if _, err := fsys.Stat(filepath.Join(outputDir, paths.ModulePropFile)); err == nil {
		return errors.Newf(errors.ErrInvalidInput, "output directory %s contains a %s", outputDir, paths.ModulePropFile).
			WithDetail("hint", "set build.output_dir to a dedicated directory such as .ksmm/build")
	}
	return nil
}

// within reports whether path is dir or lies below it
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func resetDir(fsys types.FS, dir string) error {
	if err := fsys.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to clear %s", dir)
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	return nil
}
