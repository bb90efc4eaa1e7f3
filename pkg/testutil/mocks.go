package testutil

import (
	"github.com/stretchr/testify/mock"
)

// MockSigner implements signer.Signer for testing
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(archivePath, keyPath string) (string, error) {
	args := m.Called(archivePath, keyPath)
	return args.String(0), args.Error(1)
}

func (m *MockSigner) NewKey(keyPath string) error {
	args := m.Called(keyPath)
	return args.Error(0)
}

// MockCommitReader implements vcs.Reader for testing
type MockCommitReader struct {
	mock.Mock
}

func (m *MockCommitReader) ShortCommit() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCommitReader) RemoteURL() string {
	args := m.Called()
	return args.String(0)
}
