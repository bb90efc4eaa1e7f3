// Package stamp derives time-based version codes and writes them into
// module.prop.
package stamp

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/metadata"
	"github.com/ksmm-dev/ksmm/pkg/types"
)

const linePrefix = metadata.KeyVersionCode + "="

// Code returns the version code for t as YYYYMMDDHH in UTC
func Code(t time.Time) int {
	u := t.UTC()
	return u.Year()*1_000_000 + int(u.Month())*10_000 + u.Day()*100 + u.Hour()
}

// Render replaces the first versionCode line in content with code.
// Every other line, including its line ending, is kept as is. When no
// versionCode line exists one is appended.
func Render(content string, code int) string {
	replacement := linePrefix + strconv.Itoa(code)

	offset := 0
	for offset < len(content) {
		lineEnd := len(content)
		next := strings.IndexByte(content[offset:], '\n')
		if next >= 0 {
			lineEnd = offset + next
		}

		line := strings.TrimSuffix(content[offset:lineEnd], "\r")
		if strings.HasPrefix(line, linePrefix) {
			return content[:offset] + replacement + content[offset+len(line):]
		}

		if next < 0 {
			break
		}
		offset = lineEnd + 1
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + replacement + "\n"
}

// Bump computes the code for now and rewrites path with a single write,
// keeping the file's permission bits. It returns the new code.
func Bump(fsys types.FS, path string, now time.Time) (int, error) {
	logger := logging.GetLogger("stamp")

	info, err := fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Wrapf(err, errors.ErrMissingInput, "module metadata not found at %s", path).
				WithDetail("path", path)
		}
		return 0, errors.Wrapf(err, errors.ErrIO, "failed to stat %s", path)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrIO, "failed to read %s", path)
	}

	code := Code(now)
	rendered := Render(string(data), code)

	if err := fsys.WriteFile(path, []byte(rendered), info.Mode().Perm()); err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}

	logger.Info().Str("path", path).Int("versionCode", code).Msg("Stamped version code")
	return code, nil
}
