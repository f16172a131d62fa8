package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// cli runs a freshly built mozsearch binary against an isolated HOME.
type cli struct {
	t    *testing.T
	bin  string
	home string
	env  []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("resolve repo root failed: %v", err)
	}
	home := t.TempDir()
	c := &cli{t: t, home: home, bin: filepath.Join(home, "bin", "mozsearch")}
	c.env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"GOMODCACHE="+goDir(t, "gomodcache"),
		"GOCACHE="+goDir(t, "gocache"),
	)
	build := exec.Command("go", "build", "-o", c.bin, "./cmd/mozsearch")
	build.Dir = root
	build.Env = c.env
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build cli failed: %v\n%s", err, out)
	}
	return c
}

// goDir returns a Go cache directory shared by every test binary build.
func goDir(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "mozsearch-"+name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create %s failed: %v", name, err)
	}
	return dir
}

// path joins elem onto the test HOME.
func (c *cli) path(elem ...string) string {
	return filepath.Join(append([]string{c.home}, elem...)...)
}

func (c *cli) exec(args ...string) (string, error) {
	cmd := exec.Command(c.bin, args...)
	cmd.Env = c.env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	out, err := c.exec(args...)
	if err != nil {
		c.t.Fatalf("mozsearch %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (c *cli) fail(args ...string) string {
	c.t.Helper()
	out, err := c.exec(args...)
	if err == nil {
		c.t.Fatalf("mozsearch %s should have failed\n%s", strings.Join(args, " "), out)
	}
	return out
}

func (c *cli) writeFile(rel, content string) string {
	c.t.Helper()
	path := c.path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		c.t.Fatalf("write failed: %v", err)
	}
	return path
}

func assertContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}
