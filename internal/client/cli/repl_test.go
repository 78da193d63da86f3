package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Signup(ctx context.Context) error { return s.record("signup") }
func (s *stubExec) Login(ctx context.Context) error  { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error { return s.record("logout") }
func (s *stubExec) List(ctx context.Context) error   { return s.record("list") }
func (s *stubExec) Show(ctx context.Context) error   { return s.record("show") }
func (s *stubExec) Add(ctx context.Context) error    { return s.record("add") }
func (s *stubExec) Update(ctx context.Context) error { return s.record("update") }
func (s *stubExec) Delete(ctx context.Context) error { return s.record("delete") }
func (s *stubExec) Use(ctx context.Context) error    { return s.record("use") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	orig := printlnFn
	t.Cleanup(func() { printlnFn = orig })

	var lines []string
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				lines = append(lines, s)
			}
		}
		return 0, nil
	}
	return &lines
}

func runWithInput(t *testing.T, s *stubExec, input string) []string {
	t.Helper()
	lines := captureOutput(t)
	scanner := bufio.NewScanner(strings.NewReader(input))
	runREPL(context.Background(), s, func() string { return "test" }, scanner)
	return *lines
}

func TestREPL_DispatchesCommands(t *testing.T) {
	s := &stubExec{loggedIn: true}
	runWithInput(t, s, "list\nshow\nadd\nupdate\ndelete\nuse\nlogout\nexit\n")

	assert.Equal(t, []string{"list", "show", "add", "update", "delete", "use", "logout"}, s.calls)
}

func TestREPL_AuthCommands(t *testing.T) {
	s := &stubExec{}
	runWithInput(t, s, "signup\nlogin\nquit\n")

	assert.Equal(t, []string{"signup", "login"}, s.calls)
}

func TestREPL_HelpDependsOnLogin(t *testing.T) {
	out := runWithInput(t, &stubExec{}, "help\nexit\n")
	assert.Contains(t, strings.Join(out, "\n"), "signup, login")

	out = runWithInput(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, strings.Join(out, "\n"), "list, show, add")
}

func TestREPL_UnknownCommand(t *testing.T) {
	out := runWithInput(t, &stubExec{}, "frobnicate\nexit\n")
	assert.Contains(t, strings.Join(out, "\n"), "Unknown command: frobnicate")
}

func TestREPL_EmptyLinesAndEOF(t *testing.T) {
	s := &stubExec{}
	runWithInput(t, s, "\n\n")
	assert.Empty(t, s.calls)
}
