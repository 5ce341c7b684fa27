// Command reviewctl is the command-line front end for product reviews.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"listing-review/internal/authz"
	"listing-review/internal/client"
	"listing-review/internal/config"
	"listing-review/internal/domain"
	"listing-review/internal/lifecycle"
	"listing-review/internal/logger"
	"listing-review/internal/session"

	"go.uber.org/zap"
)

const usage = `usage: reviewctl [global flags] <command> [args]

commands:
  login -email E -password P          log in and remember the session
  register -email E -password P -role R
  logout                              forget the session
  whoami                              show the current identity
  products                            list products
  product ID                          show one product
  submit ID [edit flags]              propose changes to a product for review
  save ID [edit flags]                change a product directly (admin)
  pending                             list reviews awaiting a decision (admin)
  review ID                           show one review
  approve ID | reject ID              decide a pending review (admin)
  history [PERSON_ID]                 reviews grouped by status
  stats [PERSON_ID]                   review counts
  profile                             own stats and history

edit flags: -name -price -description -department -image URL -image-file PATH

global flags:
`

type app struct {
	sessions   *session.Manager
	controller *lifecycle.Controller
	logger     *zap.Logger
	out        io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	global := flag.NewFlagSet("reviewctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	backendURL := global.String("backend", cfg.Client.BackendURL, "review backend base URL")
	tokenFile := global.String("token-file", cfg.Client.TokenFile, "where the session token is kept")
	timeout := global.Duration("timeout", cfg.Client.Timeout, "per-request timeout")
	verbose := global.Bool("verbose", false, "log backend calls to stderr")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	log, err := logger.NewClient(*verbose)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	store, err := session.NewFileStore(*tokenFile)
	if err != nil {
		fmt.Fprintf(stderr, "token store: %v\n", err)
		return 1
	}

	backend := client.New(*backendURL, *timeout, log)
	a := &app{
		sessions:   session.NewManager(backend, store, log),
		controller: lifecycle.NewController(backend, backend, backend, authz.NewGate(), log),
		logger:     log,
		out:        stdout,
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if err := a.dispatch(ctx, cmd, rest); err != nil {
		if errors.Is(err, errUsage) {
			global.Usage()
			return 2
		}
		fmt.Fprintln(stderr, describe(err))
		return exitCode(err)
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.sessions.Logout()
	case "whoami":
		return a.whoami()
	case "products":
		return a.products(ctx)
	case "product":
		return a.product(ctx, args)
	case "submit":
		return a.edit(ctx, args, false)
	case "save":
		return a.edit(ctx, args, true)
	case "pending":
		return a.pending(ctx)
	case "review":
		return a.review(ctx, args)
	case "approve":
		return a.decide(ctx, args, domain.ReviewStatusApproved)
	case "reject":
		return a.decide(ctx, args, domain.ReviewStatusRejected)
	case "history":
		return a.history(ctx, args)
	case "stats":
		return a.stats(ctx, args)
	case "profile":
		return a.profile(ctx)
	}
	return errUsage
}

// describe turns an error into a message for the terminal
func describe(err error) string {
	var fieldErrs domain.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		msg := "invalid input:"
		for _, fe := range fieldErrs {
			msg += fmt.Sprintf("\n  %s %s", fe.Field, fe.Message)
		}
		return msg
	case errors.Is(err, domain.ErrUnauthenticated):
		return fmt.Sprintf("%v\nrun 'reviewctl login' to start a session", err)
	case errors.Is(err, domain.ErrConflict):
		return fmt.Sprintf("%v\nthe review changed meanwhile; run 'reviewctl pending' to refresh", err)
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	}
	return err.Error()
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrUnauthorized):
		return 3
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return 4
	case errors.Is(err, domain.ErrConflict):
		return 5
	case errors.Is(err, domain.ErrTransientNetwork), errors.Is(err, context.DeadlineExceeded):
		return 6
	}
	return 1
}
