package archive

import (
	"fmt"
	"strings"
)

const (
	zipExt       = ".zip"
	signedSuffix = "_signed"
)

// Name returns the archive file name for a module id and version code
func Name(id string, versionCode string) string {
	return fmt.Sprintf("%s-%s%s", id, versionCode, zipExt)
}

// SignedName returns the path of the signed variant of an archive
func SignedName(path string) string {
	if strings.HasSuffix(path, zipExt) {
		return strings.TrimSuffix(path, zipExt) + signedSuffix + zipExt
	}
	return path + signedSuffix
}
