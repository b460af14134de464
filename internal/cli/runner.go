// Package cli implements the todoctl subcommands against any client of the
// todo contract.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmehra2102/todorpc/internal/domain"
	"github.com/dmehra2102/todorpc/pkg/auth"
)

const defaultTokenTTL = 24 * time.Hour

// Client is the todo contract as seen by a caller. Both the gRPC and the
// socket clients satisfy it, as does app.TodoService.
type Client interface {
	GetTodos(ctx context.Context) ([]domain.Todo, error)
	AddTodo(ctx context.Context, title string) (domain.Todo, error)
	ToggleTodo(ctx context.Context, id int64) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id int64) (int64, error)
}

type Runner struct {
	Client Client
	Out    io.Writer
	Err    io.Writer

	// Secret signs tokens for the token subcommand.
	Secret string
}

// NeedsClient reports whether args name a subcommand that talks to a server.
func NeedsClient(args []string) bool {
	return len(args) > 0 && args[0] != "token" && args[0] != "help" && args[0] != "-h" && args[0] != "--help"
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		r.PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0

	case "ls", "list":
		return r.doList(ctx)

	case "add":
		if len(a) == 0 {
			r.fail("usage: todoctl add <title...>")
			return 2
		}
		return r.doAdd(ctx, strings.Join(a, " "))

	case "toggle", "done":
		id, code := r.parseID(cmd, a)
		if code != 0 {
			return code
		}
		return r.doToggle(ctx, id)

	case "token":
		return r.Token(r.Secret, a)

	case "rm", "delete":
		id, code := r.parseID(cmd, a)
		if code != 0 {
			return code
		}
		return r.doDelete(ctx, id)
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.Err)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.Out, `todoctl - talk to a todo service

Usage:
  todoctl [flags] <subcommand> [args]

Subcommands:
  add <title...>     Add a todo (title can be multiple words)
  ls                 List todos, newest first
  toggle <id>        Flip a todo between active and completed
  rm <id>            Delete a todo
  token <user> [ttl] Mint a bearer token signed with -secret (no server needed)

Examples:
  todoctl add "write tests"
  todoctl -transport ws ls
  todoctl toggle 0
  todoctl -secret "$JWT_SECRET" token alice 1h
`)
}

// Token prints an HS256 token for a user, signed with secret. It does not
// talk to a server, so Client may be nil.
func (r *Runner) Token(secret string, args []string) int {
	if len(args) == 0 || len(args) > 2 {
		r.fail("usage: todoctl token <user> [ttl]")
		return 2
	}
	if secret == "" {
		r.fail("token: -secret or JWT_SECRET is required")
		return 2
	}

	ttl := defaultTokenTTL
	if len(args) == 2 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d <= 0 {
			r.fail("token: invalid ttl: " + args[1])
			return 2
		}
		ttl = d
	}

	token, err := auth.IssueToken(secret, args[0], ttl)
	if err != nil {
		r.fail("token: " + err.Error())
		return 1
	}
	fmt.Fprintln(r.Out, token)
	return 0
}

func (r *Runner) parseID(cmd string, args []string) (int64, int) {
	if len(args) != 1 {
		r.fail("usage: todoctl " + cmd + " <id>")
		return 0, 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		r.fail(cmd + ": not a number: " + args[0])
		return 0, 2
	}
	return id, 0
}

func (r *Runner) doList(ctx context.Context) int {
	todos, err := r.Client.GetTodos(ctx)
	if err != nil {
		return r.failErr("ls", err)
	}

	done := 0
	for _, todo := range todos {
		if todo.Completed {
			done++
		}
	}
	fmt.Fprintf(r.Out, "%s  %s %d  %s %d\n",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(todos)-done,
	)

	if len(todos) == 0 {
		fmt.Fprintln(r.Out, mutedStyle.Render("nothing to do"))
		return 0
	}
	for _, todo := range todos {
		fmt.Fprintln(r.Out, line(todo))
	}
	return 0
}

func (r *Runner) doAdd(ctx context.Context, title string) int {
	todo, err := r.Client.AddTodo(ctx, title)
	if err != nil {
		return r.failErr("add", err)
	}
	r.ok(fmt.Sprintf("added %d: %s", todo.ID, todo.Title))
	return 0
}

func (r *Runner) doToggle(ctx context.Context, id int64) int {
	todo, err := r.Client.ToggleTodo(ctx, id)
	if err != nil {
		return r.failErr("toggle", err)
	}
	state := "active"
	if todo.Completed {
		state = "completed"
	}
	r.ok(fmt.Sprintf("%d is %s", todo.ID, state))
	return 0
}

func (r *Runner) doDelete(ctx context.Context, id int64) int {
	deleted, err := r.Client.DeleteTodo(ctx, id)
	if err != nil {
		return r.failErr("rm", err)
	}
	r.ok(fmt.Sprintf("deleted %d", deleted))
	return 0
}

func line(todo domain.Todo) string {
	box, title := boxUnchecked, todo.Title
	if todo.Completed {
		box, title = boxChecked, doneStyle.Render(todo.Title)
	}
	created := mutedStyle.Render(todo.CreatedAt.Local().Format("2006-01-02 15:04"))
	return fmt.Sprintf("%s %3d  %s  %s", box, todo.ID, title, created)
}

func (r *Runner) ok(msg string) {
	fmt.Fprintln(r.Out, successStyle.Render("✔ "+msg))
}

func (r *Runner) fail(msg string) {
	fmt.Fprintln(r.Err, errorStyle.Render("✖ "+msg))
}

// failErr prints err by variant. Validation and not-found are the caller's
// fault and exit 2; anything else exits 1.
func (r *Runner) failErr(cmd string, err error) int {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		unknown    *domain.UnknownError
	)
	switch {
	case errors.As(err, &notFound):
		r.fail(fmt.Sprintf("%s: no todo with id %d", cmd, notFound.ID))
		return 2
	case errors.As(err, &validation):
		r.fail(cmd + ": " + validation.Message)
		return 2
	case errors.As(err, &unknown):
		r.fail(cmd + ": " + unknown.Message)
	default:
		r.fail(cmd + ": " + err.Error())
	}
	return 1
}
