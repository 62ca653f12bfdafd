// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package testutil collects small helpers shared by the module's test
// suites: temp-file fixtures, integration-test timeouts/contexts, and
// factories that generate unique test users, clients, and tenants.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// WriteTempFile writes content to filename under dir and returns the full
// path, failing the test on error.
func WriteTempFile(t *testing.T, dir string, filename string, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}

	return path
}

// WriteTestFile writes content to the given path, failing the test on
// error. Unlike WriteTempFile it does not join a directory; the caller is
// responsible for the parent directory existing.
func WriteTestFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
}

// ReadTestFile reads the file at path, failing the test on error.
func ReadTestFile(t *testing.T, path string) []byte {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read test file %s: %v", path, err)
	}

	return content
}

// DefaultIntegrationTimeout bounds integration tests that talk to
// testcontainers-backed services when TestTimeoutOverride is unset.
const DefaultIntegrationTimeout = 60 * time.Second

// TestTimeoutOverride, when non-zero, replaces DefaultIntegrationTimeout.
// Intended for CI environments that need a longer window; tests that set
// it must restore it to zero afterward.
var TestTimeoutOverride time.Duration

// IntegrationTimeout returns TestTimeoutOverride if set, else
// DefaultIntegrationTimeout.
func IntegrationTimeout() time.Duration {
	if TestTimeoutOverride != 0 {
		return TestTimeoutOverride
	}

	return DefaultIntegrationTimeout
}

// IntegrationContext returns a context bounded by IntegrationTimeout,
// canceled automatically when the test completes.
func IntegrationContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), IntegrationTimeout())
	t.Cleanup(cancel)

	return ctx
}

// TestID returns a unique identifier, "<prefix>-<uuid>" if prefix is
// non-empty, else a bare UUID.
func TestID(prefix string) string {
	id := uuid.New().String()

	if prefix == "" {
		return id
	}

	return prefix + "-" + id
}

// TestUser is a fixture produced by TestUserFactory.
type TestUser struct {
	ID       string
	Username string
	Email    string
	Password string
	Enabled  bool
}

// TestUserFactory creates unique TestUser fixtures sharing a common
// prefix.
type TestUserFactory struct {
	prefix string
}

func NewTestUserFactory(prefix string) *TestUserFactory {
	return &TestUserFactory{prefix: prefix}
}

func (f *TestUserFactory) Create(role string) TestUser {
	id := TestID(f.prefix)

	return TestUser{
		ID:       id,
		Username: fmt.Sprintf("%s-%s", role, id),
		Email:    fmt.Sprintf("%s-%s@test.example.com", role, id),
		Password: uuid.New().String(),
		Enabled:  true,
	}
}

// TestClient is a fixture produced by TestClientFactory.
type TestClient struct {
	ID           string
	ClientID     string
	ClientSecret string
	Name         string
	Public       bool
	RedirectURIs []string
	Scopes       []string
}

// TestClientFactory creates unique TestClient fixtures sharing a common
// prefix.
type TestClientFactory struct {
	prefix string
}

func NewTestClientFactory(prefix string) *TestClientFactory {
	return &TestClientFactory{prefix: prefix}
}

func (f *TestClientFactory) CreateConfidential(name string) TestClient {
	id := TestID(f.prefix)

	return TestClient{
		ID:           id,
		ClientID:     "client-" + id,
		ClientSecret: uuid.New().String(),
		Name:         name,
		Public:       false,
		RedirectURIs: []string{"https://localhost/callback"},
		Scopes:       []string{"openid", "profile"},
	}
}

func (f *TestClientFactory) CreatePublic(name string) TestClient {
	id := TestID(f.prefix)

	return TestClient{
		ID:           id,
		ClientID:     "public-" + id,
		ClientSecret: "",
		Name:         name,
		Public:       true,
		RedirectURIs: []string{"https://localhost/callback"},
		Scopes:       []string{"openid", "profile"},
	}
}

// TestTenant is a fixture produced by TestTenantFactory.
type TestTenant struct {
	ID          string
	Name        string
	Description string
	RealmID     string
	Enabled     bool
}

// TestTenantFactory creates unique TestTenant fixtures sharing a common
// prefix.
type TestTenantFactory struct {
	prefix string
}

func NewTestTenantFactory(prefix string) *TestTenantFactory {
	return &TestTenantFactory{prefix: prefix}
}

func (f *TestTenantFactory) Create(name string) TestTenant {
	return TestTenant{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("%s-%s", f.prefix, name),
		Description: fmt.Sprintf("Test tenant for %s", name),
		RealmID:     "default",
		Enabled:     true,
	}
}
