package ksmm

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Build, package and sign KernelSU modules"
	MsgBuildShort   = "Build the module into a release archive"
	MsgSignShort    = "Sign an existing archive"
	MsgKeyShort     = "Manage signing keys"
	MsgKeyNewShort  = "Create a new signing key"
	MsgVersionShort = "Print version information"
	MsgConfigShort  = "Print the effective settings"
	MsgConfigLong   = "Print the settings ksmm would use for this project, after merging built-in defaults, .ksmm/ksmm.toml and KSMM_* environment variables."

	// Status messages
	MsgBuildStart      = "Building module %s"
	MsgStamped         = "versionCode set to %d"
	MsgPlanned         = "Copied %d files and %d directories (%d ignored, %d force-included)"
	MsgPlannedDryRun   = "Would copy %d files and %d directories (%d ignored, %d force-included)"
	MsgPackaged        = "Packaged %d entries"
	MsgManifestWritten = "Wrote update manifest"
	MsgSigned          = "Signed archive"
	MsgSigningSkipped  = "Signing skipped: %s"
	MsgBuildDone       = "Build complete"
	MsgSignStart       = "Signing %s"
	MsgSignDone        = "Archive signed"
	MsgKeyCreated      = "Created signing key"
	MsgDryRunDone      = "Dry run: nothing was written"

	// Field labels
	MsgFieldArchive  = "archive"
	MsgFieldSigned   = "signed"
	MsgFieldManifest = "manifest"
	MsgFieldKey      = "key"

	// Error messages
	MsgErrInitPaths  = "failed to initialize paths: %w"
	MsgErrFileAbsent = "file %s does not exist"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Plan the build and log every operation without writing anything"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/sign-long.txt
	msgSignLongRaw string
	MsgSignLong    = strings.TrimSpace(msgSignLongRaw)

	//go:embed msgs/key-new-long.txt
	msgKeyNewLongRaw string
	MsgKeyNewLong    = strings.TrimSpace(msgKeyNewLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
