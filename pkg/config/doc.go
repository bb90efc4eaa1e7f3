// Package config loads ksmm's tool settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the project's .ksmm/ksmm.toml, if present
//  3. KSMM_<SECTION>_<KEY> environment variables
//
// Rule files (.gitignore, .ksmm/build.conf) are not settings and are
// read by the rules package.
package config
