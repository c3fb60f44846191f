package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it; tests
// use a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Scan(ctx context.Context) error
	History(ctx context.Context) error
	Saved(ctx context.Context) error
	Remove(ctx context.Context, localID string) error
	Sync(ctx context.Context) error
	Collections(ctx context.Context) error
	NewCollection(ctx context.Context, name string) error
	File(ctx context.Context, collectionID, itemID string) error
	Move(ctx context.Context, fromID, toID, itemID string) error
	Unfile(ctx context.Context, collectionID, itemID string) error
}

const (
	helpSignedOut = "Available commands: login, scan, history, saved, remove <localId>, help, exit"
	helpSignedIn  = "Available commands: scan, history, saved, sync, collections, newcollection <name>, " +
		"file <collectionId> <itemId>, move <fromId> <toId> <itemId>, unfile <collectionId> <itemId>, logout, help, exit"
)

// runREPL reads one command per line from in and dispatches it to a. The
// first token is the command, the rest are its arguments. Usage errors and
// command errors are printed, never returned. The loop exits on EOF or on
// "exit" / "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("antiquary %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

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

	case "login":
		return a.Login(ctx)

	case "logout":
		return a.Logout(ctx)

	case "scan":
		return a.Scan(ctx)

	case "history":
		return a.History(ctx)

	case "saved":
		return a.Saved(ctx)

	case "remove":
		if len(args) != 1 {
			return usage("remove <localId>")
		}
		return a.Remove(ctx, args[0])

	case "sync":
		return a.Sync(ctx)

	case "collections":
		return a.Collections(ctx)

	case "newcollection":
		if len(args) == 0 {
			return usage("newcollection <name>")
		}
		return a.NewCollection(ctx, strings.Join(args, " "))

	case "file":
		if len(args) != 2 {
			return usage("file <collectionId> <itemId>")
		}
		return a.File(ctx, args[0], args[1])

	case "move":
		if len(args) != 3 {
			return usage("move <fromId> <toId> <itemId>")
		}
		return a.Move(ctx, args[0], args[1], args[2])

	case "unfile":
		if len(args) != 2 {
			return usage("unfile <collectionId> <itemId>")
		}
		return a.Unfile(ctx, args[0], args[1])

	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

var errUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}
