package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refetch(ctx context.Context) error
	Discover(ctx context.Context) error
	Library(ctx context.Context) error
	Acquire(ctx context.Context, studyID string) error
	Complete(ctx context.Context, chapterID string) error
	Onboarding(ctx context.Context) error
	PersonalData(ctx context.Context) error
	EditName(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ChangeEmail(ctx context.Context) error
	Admin(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF or "exit". Errors returned by
// commands are printed and the loop continues.
//
//	Signed out: help, signup, login, discover, exit
//	Signed in:  help, whoami, refresh, discover, library, acquire <id>,
//	            complete <chapter-id>, onboarding, personal, name, password,
//	            email, logout, exit
//	Admins:     admin studies|newstudy|editstudy <id>|chapters <id>|
//	            newchapter <id>|editchapter <id>|authorize <email>
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("estudos %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printHelp(a)
		case "signup":
			cmdErr = a.SignUp(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "refresh":
			cmdErr = a.Refetch(ctx)
		case "discover":
			cmdErr = a.Discover(ctx)
		case "l", "library":
			cmdErr = a.Library(ctx)
		case "acquire":
			if len(args) != 1 {
				printlnFn("Uso: acquire <study-id>")
				continue
			}
			cmdErr = a.Acquire(ctx, args[0])
		case "complete":
			if len(args) != 1 {
				printlnFn("Uso: complete <chapter-id>")
				continue
			}
			cmdErr = a.Complete(ctx, args[0])
		case "onboarding":
			cmdErr = a.Onboarding(ctx)
		case "personal":
			cmdErr = a.PersonalData(ctx)
		case "name":
			cmdErr = a.EditName(ctx)
		case "password":
			cmdErr = a.ChangePassword(ctx)
		case "email":
			cmdErr = a.ChangeEmail(ctx)
		case "admin":
			cmdErr = a.Admin(ctx, args)
		case "exit", "quit":
			printlnFn("Até logo!")
			return
		default:
			printlnFn("Comando desconhecido:", cmd)
		}
		if cmdErr != nil {
			printlnFn("Erro:", cmdErr)
		}
		if err == io.EOF {
			return
		}
	}
}

func printHelp(a execIface) {
	switch {
	case a.isAdmin():
		printlnFn("Comandos: whoami, refresh, discover, (l)ibrary, acquire, complete, onboarding, personal, name, password, email, admin, logout, exit")
	case a.isLoggedIn():
		printlnFn("Comandos: whoami, refresh, discover, (l)ibrary, acquire, complete, onboarding, personal, name, password, email, logout, exit")
	default:
		printlnFn("Comandos: signup, login, discover, exit")
	}
}
