// Package shell is a line-oriented front end for the credential store. It
// keeps the authenticated session as an explicit value and passes the user id
// to every store call.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinyakov/PassKeeper/internal/apperr"
	"github.com/atinyakov/PassKeeper/internal/models"
	"github.com/atinyakov/PassKeeper/internal/service"
)

const prompt = "passkeeper> "

// Authenticator is the account side of the core.
type Authenticator interface {
	Authenticate(ctx context.Context, userName, password string) (service.Session, bool, error)
	Register(ctx context.Context, userName, password string) (int64, error)
	DeleteAccount(ctx context.Context, sess service.Session) error
}

// ItemStore is the item side of the credential store.
type ItemStore interface {
	GetUsername(ctx context.Context, id int64) (string, bool, error)
	AddItem(ctx context.Context, userID int64, itemName, username, password string) (int64, error)
	DeleteItem(ctx context.Context, id int64) error
	GetAllItems(ctx context.Context, userID int64) ([]models.Item, error)
	GetAllItemNames(ctx context.Context, userID int64) ([]string, error)
	GetItemID(ctx context.Context, itemName string) (int64, bool, error)
	GetItemDetails(ctx context.Context, itemID int64) (models.ItemDetails, error)
}

// Shell reads commands from in and writes results to out.
type Shell struct {
	auth    Authenticator
	store   ItemStore
	scanner *bufio.Scanner
	out     io.Writer
	log     *zap.Logger

	// readSecret reads a password without echo when in is a terminal.
	readSecret func() (string, error)

	session *service.Session

	okColor   *color.Color
	failColor *color.Color
}

// New creates a Shell. When in is a terminal, passwords are read without echo.
func New(auth Authenticator, store ItemStore, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		auth:      auth,
		store:     store,
		scanner:   bufio.NewScanner(in),
		out:       out,
		log:       log,
		okColor:   color.New(color.FgGreen),
		failColor: color.New(color.FgRed),
	}
	s.readSecret = s.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.readSecret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.out)
			return string(b), err
		}
	}
	return s
}

// Run executes commands until "exit", end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		if !s.scanner.Scan() {
			return s.scanner.Err()
		}
		line := strings.TrimSpace(s.scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, args[0]))

		switch args[0] {
		case "help":
			fmt.Fprintln(s.out, "Available commands: help, register, login, logout, whoami, add, list, show <name>, delete <name>, delete-account, exit")
		case "register":
			s.register(ctx)
		case "login":
			s.login(ctx)
		case "logout":
			s.session = nil
			s.success("Logged out")
		case "whoami":
			s.whoami(ctx)
		case "add":
			s.add(ctx)
		case "list":
			s.list(ctx)
		case "show":
			s.show(ctx, rest)
		case "delete":
			s.deleteItem(ctx, rest)
		case "delete-account":
			s.deleteAccount(ctx)
		case "exit":
			fmt.Fprintln(s.out, "Bye")
			return nil
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (s *Shell) readLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

func (s *Shell) ask(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

func (s *Shell) askSecret(label string) (string, error) {
	fmt.Fprint(s.out, label)
	v, err := s.readSecret()
	return strings.TrimSpace(v), err
}

func (s *Shell) success(msg string) {
	_, _ = s.okColor.Fprintln(s.out, msg)
}

func (s *Shell) fail(msg string) {
	_, _ = s.failColor.Fprintln(s.out, msg)
}

// report prints a user-facing message for err and logs it.
func (s *Shell) report(action string, err error) {
	var msg string
	switch {
	case errors.Is(err, apperr.ErrUniquenessViolation):
		msg = "User already exists"
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrPasswordTooShort):
		msg = err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		msg = "Item not found"
	case errors.Is(err, apperr.ErrReferentialIntegrity):
		msg = "Account no longer exists"
	case errors.Is(err, apperr.ErrDecryption):
		msg = "Stored secret cannot be decrypted"
	default:
		msg = "Storage is unavailable"
	}
	s.log.Debug("command failed", zap.String("command", action), zap.Error(err))
	s.fail(msg)
}

func (s *Shell) requireSession() bool {
	if s.session == nil {
		s.fail("Please log in first")
		return false
	}
	return true
}
