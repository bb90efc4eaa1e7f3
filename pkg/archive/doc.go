// Package archive packages a materialized module tree into a zip file.
//
// Every entry is written with mode 0755 regardless of its source mode,
// directories get their own "name/" entry, and files are deflated at the
// best compression level. The zip is first written next to its
// destination with a ".partial" suffix and renamed into place only once
// the central directory has been flushed, so an interrupted or failed
// build never leaves a truncated archive under the final name.
package archive
