// Package paths centralizes where ksmm reads and writes inside a module
// project.
//
// A project is a directory holding module.prop. Everything the tool owns
// lives under the project's .ksmm directory:
//
//	.ksmm/build.conf    ignore and force-include rules
//	.ksmm/ksmm.toml     tool settings
//	.ksmm/key/          signing keys
//	.ksmm/build/        materialized build tree (default)
//	.ksmm/release/      packaged archives (default)
//	.ksmm/update.json   update manifest
//
// # Environment Variables
//
//   - KSMM_ROOT: project root (default: current directory)
//
// Configurable locations are resolved against the project root with
// Resolve, so settings may use relative paths, absolute paths or "~".
package paths
