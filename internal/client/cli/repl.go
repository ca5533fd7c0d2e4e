package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Waitlist(ctx context.Context) error

	Add(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Search(ctx context.Context) error
	Copy(ctx context.Context, id string) error
	Save(ctx context.Context, id string) error
	Saved(ctx context.Context) error
	Vote(ctx context.Context, id string, isUpvote bool) error
	Tally(ctx context.Context, id string) error

	Folders(ctx context.Context) error
	MkFolder(ctx context.Context) error
	AddTo(ctx context.Context, folderID, codeID string) error
	Folder(ctx context.Context, id string) error

	Upload(ctx context.Context, codeID, path string) error
	Audit(ctx context.Context) error
	Reprovision(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, login, search, show <id>, copy <id>, up <id>, down <id>, tally <id>, waitlist, exit"
	helpSignedIn  = "Available commands: add, show <id>, search, copy <id>, save <id>, saved, up <id>, down <id>, tally <id>, " +
		"folders, mkfolder, addto <folder> <code>, folder <id>, upload <code> <file>, whoami, waitlist, audit, reprovision, logout, exit"
)

// usage lists the commands that take arguments.
var usage = map[string]string{
	"show":   "show <id>",
	"copy":   "copy <id>",
	"save":   "save <id>",
	"up":     "up <id>",
	"down":   "down <id>",
	"tally":  "tally <id>",
	"folder": "folder <id>",
	"addto":  "addto <folder-id> <code-id>",
	"upload": "upload <code-id> <file>",
}

func arity(cmd string) int {
	u, ok := usage[cmd]
	if !ok {
		return 0
	}
	return len(strings.Fields(u)) - 1
}

// runREPL reads one command per line from reader and dispatches it to a.
// It returns on EOF or on "exit"/"quit". Command errors are printed and the
// loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("srefhub %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if n := arity(cmd); len(args) < n {
			printlnFn("Usage:", usage[cmd])
			continue
		}

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return nil

	case "signup", "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "waitlist":
		return a.Waitlist(ctx)

	case "add":
		return a.Add(ctx)
	case "show":
		return a.Show(ctx, args[0])
	case "search":
		return a.Search(ctx)
	case "copy":
		return a.Copy(ctx, args[0])
	case "save":
		return a.Save(ctx, args[0])
	case "saved":
		return a.Saved(ctx)
	case "up":
		return a.Vote(ctx, args[0], true)
	case "down":
		return a.Vote(ctx, args[0], false)
	case "tally":
		return a.Tally(ctx, args[0])

	case "folders":
		return a.Folders(ctx)
	case "mkfolder":
		return a.MkFolder(ctx)
	case "addto":
		return a.AddTo(ctx, args[0], args[1])
	case "folder":
		return a.Folder(ctx, args[0])

	case "upload":
		return a.Upload(ctx, args[0], args[1])
	case "audit":
		return a.Audit(ctx)
	case "reprovision":
		return a.Reprovision(ctx)
	}

	printlnFn("Unknown command:", cmd)
	return nil
}
