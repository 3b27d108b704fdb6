package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Text(ctx context.Context, text string) error
	Upload(ctx context.Context, path string, force bool) error
	Get(ctx context.Context, key, dest string) error
	Cat(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
}

const (
	helpLoggedOut = "Available commands: login, help, exit"
	helpLoggedIn  = "Available commands: (l)ist, search <q>, text [text], upload <path> [-f], get <key> [dest], cat <key>, rm <key>, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the sharebox CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help              show available commands
//	  - login             enter the access code
//	  - exit | quit       leave the program
//
//	Logged in:
//	  - list | l          list objects, newest first
//	  - search <q>        list objects matching q
//	  - text [text]       upload a snippet (prompts when text is omitted)
//	  - upload <path> -f  upload a file, -f replaces without asking
//	  - get <key> [dest]  download an object
//	  - cat <key>         print a text object
//	  - rm <key>          delete an object
//	  - logout            end the session
//
// Command errors are printed and the loop continues. Keys are taken
// verbatim from the rest of the line so they may contain spaces, except for
// get where the first token is the key.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("sharebox %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		line = strings.TrimSpace(line)
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			if isCommand(cmd) {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "l", "list":
			report(a.List(ctx))

		case "search":
			if rest == "" {
				printlnFn("Usage: search <q>")
				continue
			}
			report(a.Search(ctx, rest))

		case "text":
			report(a.Text(ctx, rest))

		case "upload":
			path, force := uploadArgs(rest)
			if path == "" {
				printlnFn("Usage: upload <path> [-f]")
				continue
			}
			report(a.Upload(ctx, path, force))

		case "get":
			if len(args) == 0 || len(args) > 2 {
				printlnFn("Usage: get <key> [dest]")
				continue
			}
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			}
			report(a.Get(ctx, args[0], dest))

		case "cat":
			if rest == "" {
				printlnFn("Usage: cat <key>")
				continue
			}
			report(a.Cat(ctx, rest))

		case "rm":
			if rest == "" {
				printlnFn("Usage: rm <key>")
				continue
			}
			report(a.Remove(ctx, rest))

		case "logout":
			report(a.Logout(ctx))

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isCommand(cmd string) bool {
	switch cmd {
	case "l", "list", "search", "text", "upload", "get", "cat", "rm", "logout":
		return true
	}
	return false
}

// uploadArgs splits "path [-f]" with -f allowed on either side.
func uploadArgs(rest string) (string, bool) {
	force := false
	switch {
	case rest == "-f":
		return "", true
	case strings.HasPrefix(rest, "-f "):
		force, rest = true, strings.TrimSpace(rest[3:])
	case strings.HasSuffix(rest, " -f"):
		force, rest = true, strings.TrimSpace(rest[:len(rest)-3])
	}
	return rest, force
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
