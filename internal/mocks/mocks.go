// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"context"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"snpeprep/internal/domain"
)

// MockCommandRunner is a mock implementation of domain.CommandRunner.
type MockCommandRunner struct {
	mock.Mock
}

// NewMockCommandRunner creates a runner mock whose expectations are asserted on cleanup.
func NewMockCommandRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCommandRunner {
	m := &MockCommandRunner{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCommandRunner) Run(ctx context.Context, inv domain.Invocation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// MockFileSystemAdapter is a mock implementation of domain.FileSystemAdapter.
type MockFileSystemAdapter struct {
	mock.Mock
}

// NewMockFileSystemAdapter creates a filesystem mock whose expectations are asserted on cleanup.
func NewMockFileSystemAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFileSystemAdapter {
	m := &MockFileSystemAdapter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFileSystemAdapter) Stat(path string) (os.FileInfo, error) {
	args := m.Called(path)
	info, _ := args.Get(0).(os.FileInfo)
	return info, args.Error(1)
}

func (m *MockFileSystemAdapter) MkdirAll(path string, perm os.FileMode) error {
	return m.Called(path, perm).Error(0)
}

func (m *MockFileSystemAdapter) Glob(pattern string) ([]string, error) {
	args := m.Called(pattern)
	matches, _ := args.Get(0).([]string)
	return matches, args.Error(1)
}

func (m *MockFileSystemAdapter) CopyFile(src, dst string) error {
	return m.Called(src, dst).Error(0)
}

// RecordingRunner records every invocation and returns scripted results.
// Failures maps a tool name to the error returned for it.
type RecordingRunner struct {
	mu          sync.Mutex
	Failures    map[string]error
	invocations []domain.Invocation
}

// NewRecordingRunner creates a runner that succeeds for every tool.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{Failures: map[string]error{}}
}

func (r *RecordingRunner) Run(_ context.Context, inv domain.Invocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations = append(r.invocations, inv)
	return r.Failures[inv.Name]
}

// Invocations returns the recorded invocations in call order.
func (r *RecordingRunner) Invocations() []domain.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Invocation, len(r.invocations))
	copy(out, r.invocations)
	return out
}

var (
	_ domain.CommandRunner     = (*MockCommandRunner)(nil)
	_ domain.CommandRunner     = (*RecordingRunner)(nil)
	_ domain.FileSystemAdapter = (*MockFileSystemAdapter)(nil)
)
