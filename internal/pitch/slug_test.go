package pitch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// mockSlugLister はSlugListerのテスト用実装。
type mockSlugLister struct {
	listFunc   func(ctx context.Context, prefix string) ([]string, error)
	lastPrefix string
}

func (m *mockSlugLister) ListSlugsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	m.lastPrefix = prefix
	if m.listFunc != nil {
		return m.listFunc(ctx, prefix)
	}
	return nil, nil
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"My Cool Startup!!", "my-cool-startup"},
		{"Hello World", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"snake_case_name", "snake-case-name"},
		{"already-a-slug", "already-a-slug"},
		{"MiXeD CaSe 123", "mixed-case-123"},
		{"---", "untitled"},
		{"!!!", "untitled"},
		{"", "untitled"},
		{"日本語のみ", "untitled"},
		{"C++ & Go!", "c-go"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestResolve_NoCollisionReturnsBase(t *testing.T) {
	lister := &mockSlugLister{}
	r := NewSlugResolver(lister)

	got := r.Resolve(context.Background(), "My Cool Startup")

	if got != "my-cool-startup" {
		t.Errorf("Resolve() = %q, want %q", got, "my-cool-startup")
	}
	if lister.lastPrefix != "my-cool-startup" {
		t.Errorf("prefix = %q, want base slug", lister.lastPrefix)
	}
}

func TestResolve_CollisionProbesLinearly(t *testing.T) {
	lister := &mockSlugLister{
		listFunc: func(ctx context.Context, prefix string) ([]string, error) {
			return []string{"my-app", "my-app-1", "my-app-2"}, nil
		},
	}
	r := NewSlugResolver(lister)

	got := r.Resolve(context.Background(), "My App")

	if got != "my-app-3" {
		t.Errorf("Resolve() = %q, want %q", got, "my-app-3")
	}
}

func TestResolve_IgnoresUnrelatedSuffixes(t *testing.T) {
	// base自体が未使用ならサフィックス付きの既存slugがあってもbaseを返す
	lister := &mockSlugLister{
		listFunc: func(ctx context.Context, prefix string) ([]string, error) {
			return []string{"my-app-1", "my-apple"}, nil
		},
	}
	r := NewSlugResolver(lister)

	if got := r.Resolve(context.Background(), "My App"); got != "my-app" {
		t.Errorf("Resolve() = %q, want %q", got, "my-app")
	}
}

func TestResolve_StoreErrorFallsBackToTimestamp(t *testing.T) {
	lister := &mockSlugLister{
		listFunc: func(ctx context.Context, prefix string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := NewSlugResolver(lister)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	got := r.Resolve(context.Background(), "My App")

	want := fmt.Sprintf("my-app-%d", fixed.UnixMilli())
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_EmptyTitleUsesFallbackBase(t *testing.T) {
	lister := &mockSlugLister{}
	r := NewSlugResolver(lister)

	if got := r.Resolve(context.Background(), "!!!"); got != "untitled" {
		t.Errorf("Resolve() = %q, want %q", got, "untitled")
	}
}
