package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ShowProfile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	UploadAvatar(ctx context.Context, path string) error
	Logout(ctx context.Context) error
	ResetLocal(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Eden CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Not logged in:
//	  - help             show available commands
//	  - signup           create an account
//	  - login            authenticate
//	  - forgot           request a password reset
//	  - status           show which services are in use
//	  - reset-local      wipe every account stored on this device
//	  - exit | quit      leave the program
//
//	Logged in, additionally:
//	  - profile          show the profile
//	  - update           edit profile fields
//	  - avatar <file>    upload a profile photo
//	  - logout           end the session
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("eden> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, update, avatar <file>, logout, status, reset-local, exit")
			} else {
				printlnFn("Available commands: signup, login, forgot, status, reset-local, exit")
			}

		case "signup", "register":
			cmdErr = a.SignUp(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "forgot":
			cmdErr = a.ForgotPassword(ctx)

		case "profile":
			cmdErr = a.ShowProfile(ctx)

		case "update":
			cmdErr = a.UpdateProfile(ctx)

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			cmdErr = a.UploadAvatar(ctx, args[0])

		case "logout":
			cmdErr = a.Logout(ctx)

		case "reset-local":
			cmdErr = a.ResetLocal(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
