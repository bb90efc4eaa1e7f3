package ksmm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ksmm-dev/ksmm/internal/version"
	"github.com/ksmm-dev/ksmm/pkg/build"
	"github.com/ksmm-dev/ksmm/pkg/config"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/filesystem"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/operations"
	"github.com/ksmm-dev/ksmm/pkg/paths"
	"github.com/ksmm-dev/ksmm/pkg/signer"
	"github.com/ksmm-dev/ksmm/pkg/ui"
	"github.com/ksmm-dev/ksmm/pkg/vcs"
	"github.com/spf13/cobra"
)

// project bundles what every command needs about the current module
type project struct {
	paths  paths.Paths
	config *config.Config
}

// initProject resolves the project root and loads its settings, warning
// when the root came from the current directory
func initProject(cmd *cobra.Command) (*project, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	if p.UsedFallback() {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning+"\n", p.Root())
	}

	cfg, err := config.Load(p.SettingsFile())
	if err != nil {
		return nil, err
	}

	return &project{paths: p, config: cfg}, nil
}

// newSigner builds the zakosign runner; a configured binary path may
// start with ~
func (proj *project) newSigner() *signer.Zakosign {
	return signer.NewZakosign(paths.ExpandHome(proj.config.Signer.Binary))
}

func printerFor(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func newBuildCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.build")
			logging.LogCommand(logger, "build", args)

			proj, err := initProject(cmd)
			if err != nil {
				return err
			}

			out := printerFor(cmd)
			out.Header(MsgBuildStart, proj.paths.Root())

			pipeline := build.New(build.Options{
				FS:     filesystem.NewOS(),
				Paths:  proj.paths,
				Config: proj.config,
				Signer: proj.newSigner(),
				VCS:    vcs.NewGit(proj.paths.Root()),
				Now:    time.Now,
				DryRun: dryRun,
			})

			result, err := pipeline.Run()
			printBuildResult(out, proj, result)
			if err != nil {
				return err
			}

			if result.DryRun {
				out.Notice(MsgDryRunDone)
				return nil
			}
			out.Success(MsgBuildDone)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}

// printBuildResult reports every stage the build got through
func printBuildResult(out *ui.Printer, proj *project, result *build.Result) {
	if result == nil {
		return
	}
	reached := result.Stage
	if reached == build.StageFailed {
		reached = result.FailedAt
	}

	if reached > build.StageVersionStamped {
		out.Step(MsgStamped, result.VersionCode)
	}
	if reached > build.StageExecuted {
		ops := result.Operations
		planned := MsgPlanned
		if result.DryRun {
			planned = MsgPlannedDryRun
		}
		out.Step(planned,
			ops[operations.CopyFile],
			ops[operations.CreateDirectory],
			ops[operations.RecordedIgnore],
			ops[operations.RecordedForceInclude])
	}
	if result.ArchivePath != "" {
		out.Step(MsgPackaged, result.Entries)
		out.Field(MsgFieldArchive, relTo(proj.paths.Root(), result.ArchivePath))
	}
	if result.ManifestPath != "" {
		out.Step(MsgManifestWritten)
		out.Field(MsgFieldManifest, relTo(proj.paths.Root(), result.ManifestPath))
	}
	switch {
	case result.SignedPath != "":
		out.Step(MsgSigned)
		out.Field(MsgFieldSigned, relTo(proj.paths.Root(), result.SignedPath))
	case result.SigningSkipped != "":
		out.Notice(MsgSigningSkipped, result.SigningSkipped)
	}
}

func newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <file>",
		Short: MsgSignShort,
		Long:  MsgSignLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.sign")
			logging.LogCommand(logger, "sign", args)

			proj, err := initProject(cmd)
			if err != nil {
				return err
			}

			input, err := proj.paths.NormalizePath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(input); err != nil {
				return errors.Newf(errors.ErrNotFound, MsgErrFileAbsent, args[0]).
					WithDetail("path", input)
			}

			fsys := filesystem.NewOS()
			key, err := signer.RequireKey(fsys, proj.paths.Resolve(proj.config.Signer.KeyDir))
			if err != nil {
				return err
			}

			out := printerFor(cmd)
			out.Header(MsgSignStart, filepath.Base(input))
			out.Field(MsgFieldKey, relTo(proj.paths.Root(), key))

			signed, err := proj.newSigner().Sign(input, key)
			if err != nil {
				return err
			}

			out.Field(MsgFieldSigned, signed)
			out.Success(MsgSignDone)
			return nil
		},
	}
}

func newKeyCmd() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: MsgKeyShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: MsgKeyNewShort,
		Long:  MsgKeyNewLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.key")
			logging.LogCommand(logger, "key new", args)

			proj, err := initProject(cmd)
			if err != nil {
				return err
			}

			keyDir := proj.paths.Resolve(proj.config.Signer.KeyDir)
			keyPath, err := signer.CreateKey(filesystem.NewOS(), proj.newSigner(), keyDir, args[0])
			if err != nil {
				return err
			}

			out := printerFor(cmd)
			out.Success(MsgKeyCreated)
			out.Field(MsgFieldKey, relTo(proj.paths.Root(), keyPath))
			return nil
		},
	})

	return keyCmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long:  MsgConfigLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := initProject(cmd)
			if err != nil {
				return err
			}

			rendered, err := config.Render(proj.config)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ksmm %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}

// relTo shortens path for display when it lives under root
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
