package provision

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalProvisionCreatesBareRepo(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, nil)
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}

	handles, err := l.Provision(context.Background(), Request{SiteID: "s1", Slug: "acme", TenantID: "t1"})
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}
	if !strings.HasPrefix(handles.RepoURL, "file://") {
		t.Fatalf("repo url should be file scheme, got %q", handles.RepoURL)
	}
	if _, err := os.Stat(filepath.Join(root, "acme.git", "HEAD")); err != nil {
		t.Fatalf("bare repository not initialized: %v", err)
	}
	if handles.DeploymentURL == "" || handles.HostingProjectID != "acme" {
		t.Fatalf("unexpected handles: %#v", handles)
	}
}

func TestLocalProvisionIsIdempotentPerSlug(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, nil)
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	if _, err := l.Provision(context.Background(), Request{Slug: "acme"}); err != nil {
		t.Fatalf("first Provision returned error: %v", err)
	}
	if _, err := l.Provision(context.Background(), Request{Slug: "acme"}); err != nil {
		t.Fatalf("second Provision should not fail on existing repo: %v", err)
	}
}

func TestLocalProvisionRequiresSlug(t *testing.T) {
	l, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	if _, err := l.Provision(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for empty slug")
	}
}
