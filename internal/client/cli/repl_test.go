package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(s string) error {
	f.calls = append(f.calls, s)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error              { return f.record("whoami") }
func (f *fakeExec) Waitlist(context.Context) error            { return f.record("waitlist") }
func (f *fakeExec) Add(context.Context) error                 { return f.record("add") }
func (f *fakeExec) Show(_ context.Context, id string) error   { return f.record("show " + id) }
func (f *fakeExec) Search(context.Context) error              { return f.record("search") }
func (f *fakeExec) Copy(_ context.Context, id string) error   { return f.record("copy " + id) }
func (f *fakeExec) Save(_ context.Context, id string) error   { return f.record("save " + id) }
func (f *fakeExec) Saved(context.Context) error               { return f.record("saved") }
func (f *fakeExec) Tally(_ context.Context, id string) error  { return f.record("tally " + id) }
func (f *fakeExec) Folders(context.Context) error             { return f.record("folders") }
func (f *fakeExec) MkFolder(context.Context) error            { return f.record("mkfolder") }
func (f *fakeExec) Folder(_ context.Context, id string) error { return f.record("folder " + id) }
func (f *fakeExec) Audit(context.Context) error               { return f.record("audit") }
func (f *fakeExec) Reprovision(context.Context) error         { return f.record("reprovision") }
func (f *fakeExec) Vote(_ context.Context, id string, up bool) error {
	return f.record(fmt.Sprintf("vote %s %t", id, up))
}
func (f *fakeExec) AddTo(_ context.Context, folderID, codeID string) error {
	return f.record("addto " + folderID + " " + codeID)
}
func (f *fakeExec) Upload(_ context.Context, codeID, path string) error {
	return f.record("upload " + codeID + " " + path)
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec execIface, input string) {
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))
}

func TestRunREPL_Dispatch(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	run(exec, strings.Join([]string{
		"signup", "login", "whoami", "add", "show c1", "search", "copy c1", "save c1", "saved",
		"up c1", "down c1", "tally c1", "folders", "mkfolder", "addto f1 c1", "folder f1",
		"upload c1 ./p.png", "audit", "reprovision", "waitlist", "logout",
	}, "\n"))

	assert.Equal(t, []string{
		"register", "login", "whoami", "add", "show c1", "search", "copy c1", "save c1", "saved",
		"vote c1 true", "vote c1 false", "tally c1", "folders", "mkfolder", "addto f1 c1", "folder f1",
		"upload c1 ./p.png", "audit", "reprovision", "waitlist", "logout",
	}, exec.calls)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	run(exec, "show\naddto f1\n\nfoobar\nquit\nshow c1\n")

	assert.Empty(t, exec.calls)
	out := strings.Join(*lines, "")
	assert.Contains(t, out, "Usage: show <id>")
	assert.Contains(t, out, "Usage: addto <folder-id> <code-id>")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{err: fmt.Errorf("please sign in to vote")}
	run(exec, "up c1\ntally c1")

	assert.Equal(t, []string{"vote c1 true", "tally c1"}, exec.calls)
	assert.Contains(t, strings.Join(*lines, ""), "error: please sign in to vote")
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := capturePrintln(t)

	run(&fakeExec{}, "help\n")
	assert.Contains(t, strings.Join(*lines, ""), helpSignedOut)

	*lines = nil
	run(&fakeExec{loggedIn: true}, "help\n")
	assert.Contains(t, strings.Join(*lines, ""), helpSignedIn)
}
