// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aab-cli/internal/testutil"
)

func TestRun(t *testing.T) {
	t.Run("empty script is a no-op", func(t *testing.T) {
		var out bytes.Buffer
		err := Run(context.Background(), "  \n", Env{}, nil, &out, &out)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("output = %q, want empty", out.String())
		}
	})

	t.Run("exports build variables", func(t *testing.T) {
		root := t.TempDir()
		var out bytes.Buffer
		env := Env{
			Root:      root,
			ModuleDir: filepath.Join(root, "dist", "src", "demo_addon"),
			Version:   "1.2.3",
			Dist:      "local",
		}
		err := Run(context.Background(), `echo "$AAB_VERSION/$AAB_DIST"`, env, nil, &out, &out)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != "1.2.3/local" {
			t.Errorf("output = %q, want %q", got, "1.2.3/local")
		}
	})

	t.Run("runs in project root", func(t *testing.T) {
		root := t.TempDir()
		var out bytes.Buffer
		err := Run(context.Background(), "echo ok >marker.txt", Env{Root: root}, nil, &out, &out)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := testutil.MustReadFile(t, filepath.Join(root, "marker.txt")); strings.TrimSpace(got) != "ok" {
			t.Errorf("marker content = %q", got)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		var out bytes.Buffer
		err := Run(context.Background(), "exit 3", Env{Root: t.TempDir()}, nil, &out, &out)
		if !errors.Is(err, ErrHook) {
			t.Fatalf("error = %v, want ErrHook", err)
		}
		if !strings.Contains(err.Error(), "exit status 3") {
			t.Errorf("error = %v, want exit status 3", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		var out bytes.Buffer
		err := Run(context.Background(), "if then fi (", Env{Root: t.TempDir()}, nil, &out, &out)
		if !errors.Is(err, ErrHook) {
			t.Errorf("error = %v, want ErrHook", err)
		}
	})

	t.Run("parent environment is visible", func(t *testing.T) {
		var out bytes.Buffer
		environ := append(os.Environ(), "AAB_TEST_PARENT=yes")
		err := Run(context.Background(), `echo "$AAB_TEST_PARENT"`, Env{Root: t.TempDir()}, environ, &out, &out)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != "yes" {
			t.Errorf("output = %q, want %q", got, "yes")
		}
	})
}
