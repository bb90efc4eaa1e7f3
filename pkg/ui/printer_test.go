package ui

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewPrinter(&out, &errOut), &out, &errOut
}

func TestStep(t *testing.T) {
	p, out, _ := newTestPrinter()

	p.Step("Copied %d files", 3)

	assert.Equal(t, "[+] Copied 3 files\n", out.String())
}

func TestNoticeAndWarn(t *testing.T) {
	p, out, _ := newTestPrinter()

	p.Notice("signing skipped")
	p.Warn("no key in %s", ".ksmm/key")

	assert.Equal(t, "[!] signing skipped\n[!] no key in .ksmm/key\n", out.String())
}

func TestField(t *testing.T) {
	p, out, _ := newTestPrinter()

	p.Field("archive", "foo-42.zip")

	assert.Contains(t, out.String(), "archive:")
	assert.Contains(t, out.String(), "foo-42.zip")
}

func TestFailure(t *testing.T) {
	p, out, errOut := newTestPrinter()

	err := errors.New(errors.ErrNotFound, "no .pem key found").
		WithDetail("hint", "create one with 'ksmm key new <name>'")
	p.Failure(err)

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[x] [NOT_FOUND] no .pem key found")
	assert.Contains(t, errOut.String(), "ksmm key new")
}

func TestFailurePlainError(t *testing.T) {
	p, _, errOut := newTestPrinter()

	p.Failure(fmt.Errorf("plain"))
	p.Failure(nil)

	assert.Equal(t, "[x] plain\n", errOut.String())
}
