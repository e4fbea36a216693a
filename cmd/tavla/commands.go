package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// withRuntime wraps a command body with setup and flow logging.
func (c *cli) withRuntime(name string, fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := c.setup(ctx); err != nil {
			return err
		}
		c.logger.Debug("command flow start", "command", name)
		if err := fn(ctx, args); err != nil {
			c.logger.Error("command flow failed", "command", name, "err", err)
			return err
		}
		c.logger.Debug("command flow complete", "command", name)
		return nil
	}
}

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := c.resolvePaths(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.stdout, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(c.stdout, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(c.stdout, "config: %s\n", c.configPath)
			_, _ = fmt.Fprintf(c.stdout, "data_dir: %s\n", c.paths.DataDir)
			_, _ = fmt.Fprintf(c.stdout, "db: %s\n", c.paths.DBPath)
			_, _ = fmt.Fprintf(c.stdout, "log_dir: %s\n", c.paths.LogDir)
			return nil
		},
	}
}

func (c *cli) signInCommand() *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&login, "login", "", "account login")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	cmd.RunE = c.withRuntime("signin", func(ctx context.Context, _ []string) error {
		secret, err := c.passwordOrPrompt(password)
		if err != nil {
			return err
		}
		user, err := c.session.SignIn(ctx, login, secret)
		if err != nil {
			return errors.New(c.catalog.ErrorMessage(err))
		}
		c.logger.Info("signed in", "login", user.Login)
		_, _ = fmt.Fprintf(c.stdout, "signed in as %s (%s)\n", user.Login, user.ID)
		return nil
	})
	return cmd
}

func (c *cli) signUpCommand() *cobra.Command {
	var name, login, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&login, "login", "", "account login")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	cmd.RunE = c.withRuntime("signup", func(ctx context.Context, _ []string) error {
		secret, err := c.passwordOrPrompt(password)
		if err != nil {
			return err
		}
		user, err := c.session.SignUp(ctx, name, login, secret)
		if err != nil {
			return errors.New(c.catalog.ErrorMessage(err))
		}
		_, _ = fmt.Fprintf(c.stdout, "created account %s (%s), run `tavla signin` next\n", user.Login, user.ID)
		return nil
	})
	return cmd
}

func (c *cli) signOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: c.withRuntime("signout", func(ctx context.Context, _ []string) error {
			if err := c.session.SignOut(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.stdout, "signed out")
			return nil
		}),
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: c.withRuntime("whoami", func(ctx context.Context, _ []string) error {
			user, err := c.session.Current(ctx)
			if err != nil {
				return err
			}
			if !user.SignedIn {
				_, _ = fmt.Fprintln(c.stdout, "not signed in")
				return nil
			}
			_, _ = fmt.Fprintf(c.stdout, "%s (%s)\n", user.Login, user.ID)
			return nil
		}),
	}
}

func (c *cli) accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show, edit or delete the signed-in account",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the account profile",
		Args:  cobra.NoArgs,
		RunE: c.withRuntime("account show", func(ctx context.Context, _ []string) error {
			user, err := c.session.GetUser(ctx)
			if err != nil {
				return errors.New(c.catalog.ErrorMessage(err))
			}
			_, _ = fmt.Fprintf(c.stdout, "id: %s\nname: %s\nlogin: %s\n", user.ID, user.Name, user.Login)
			return nil
		}),
	})

	var name, login, password string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Rewrite the account profile",
		Args:  cobra.NoArgs,
	}
	edit.Flags().StringVar(&name, "name", "", "display name")
	edit.Flags().StringVar(&login, "login", "", "account login")
	edit.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	edit.RunE = c.withRuntime("account edit", func(ctx context.Context, _ []string) error {
		secret, err := c.passwordOrPrompt(password)
		if err != nil {
			return err
		}
		user, err := c.session.EditProfile(ctx, name, login, secret)
		if err != nil {
			return errors.New(c.catalog.ErrorMessage(err))
		}
		_, _ = fmt.Fprintf(c.stdout, "updated account %s\n", user.Login)
		return nil
	})
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the account and sign out",
		Args:  cobra.NoArgs,
		RunE: c.withRuntime("account delete", func(ctx context.Context, _ []string) error {
			if err := c.session.DeleteUser(ctx); err != nil {
				return errors.New(c.catalog.ErrorMessage(err))
			}
			_, _ = fmt.Fprintln(c.stdout, "account deleted")
			return nil
		}),
	})
	return cmd
}

func (c *cli) boardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: c.withRuntime("boards", func(ctx context.Context, _ []string) error {
			if _, err := c.requireSignIn(ctx); err != nil {
				return err
			}
			boards, err := c.client.ListBoards(ctx)
			if err != nil {
				return errors.New(c.catalog.ErrorMessage(err))
			}
			if len(boards) == 0 {
				_, _ = fmt.Fprintln(c.stdout, "no boards")
				return nil
			}
			_, _ = fmt.Fprintln(c.stdout, boardsTable(boards))
			return nil
		}),
	}
}

// boardsTable renders boards as a bordered table.
func boardsTable(boards []domain.Board) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "TITLE", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, board := range boards {
		t.Row(board.ID, board.Title, truncateText(board.Description, 48))
	}
	return t.String()
}

func (c *cli) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Create, delete or show one board",
	}

	var description string
	create := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
	}
	create.Flags().StringVar(&description, "description", "", "board description (markdown)")
	create.RunE = c.withRuntime("board create", func(ctx context.Context, args []string) error {
		if _, err := c.requireSignIn(ctx); err != nil {
			return err
		}
		board, err := c.client.CreateBoard(ctx, strings.TrimSpace(args[0]), strings.TrimSpace(description))
		if err != nil {
			return errors.New(c.catalog.ErrorMessage(err))
		}
		_, _ = fmt.Fprintf(c.stdout, "created board %s (%s)\n", board.Title, board.ID)
		return nil
	})

	del := &cobra.Command{
		Use:   "delete <boardID>",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: c.withRuntime("board delete", func(ctx context.Context, args []string) error {
			if _, err := c.requireSignIn(ctx); err != nil {
				return err
			}
			if err := c.client.DeleteBoard(ctx, args[0]); err != nil {
				return errors.New(c.catalog.ErrorMessage(err))
			}
			_, _ = fmt.Fprintf(c.stdout, "deleted board %s\n", args[0])
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show <boardID>",
		Short: "Print a board's columns and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: c.withRuntime("board show", func(ctx context.Context, args []string) error {
			view, err := c.loadBoard(ctx, args[0])
			if err != nil {
				return err
			}
			board, _ := view.Board()
			c.printBoard(c.stdout, board)
			return nil
		}),
	}

	cmd.AddCommand(create, del, show)
	return cmd
}

func (c *cli) columnCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Add, delete or move columns",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <boardID> <title>",
		Short: "Append a column",
		Args:  cobra.ExactArgs(2),
		RunE: c.withRuntime("column add", func(ctx context.Context, args []string) error {
			view, err := c.loadBoard(ctx, args[0])
			if err != nil {
				return err
			}
			if err := view.AddColumn(ctx, args[1]); err != nil {
				return c.userError(err)
			}
			board, _ := view.Board()
			c.printBoard(c.stdout, board)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <boardID> <columnID>",
		Short: "Delete a column and its tasks",
		Args:  cobra.ExactArgs(2),
		RunE: c.withRuntime("column delete", func(ctx context.Context, args []string) error {
			view, err := c.loadBoard(ctx, args[0])
			if err != nil {
				return err
			}
			board, _ := view.Board()
			idx := board.ColumnIndex(args[1])
			if idx < 0 {
				return fmt.Errorf("column %q: %w", args[1], app.ErrColumnNotOnBoard)
			}
			view.RequestDeleteColumn(board.Columns[idx])
			if err := view.ConfirmDelete(ctx); err != nil {
				return c.userError(err)
			}
			_, _ = fmt.Fprintf(c.stdout, "deleted column %s\n", board.Columns[idx].Title)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "move <boardID> <columnID> <position>",
		Short: "Move a column to a 1-based position",
		Args:  cobra.ExactArgs(3),
		RunE: c.withRuntime("column move", func(ctx context.Context, args []string) error {
			position, err := strconv.Atoi(args[2])
			if err != nil || position < 1 {
				return fmt.Errorf("position %q: %w", args[2], domain.ErrInvalidIndex)
			}
			view, err := c.loadBoard(ctx, args[0])
			if err != nil {
				return err
			}
			board, _ := view.Board()
			from := board.ColumnIndex(args[1])
			if from < 0 {
				return fmt.Errorf("column %q (board has %s): %w", args[1], strings.Join(board.ColumnIDs(), ", "), app.ErrColumnNotOnBoard)
			}
			if position > len(board.Columns) {
				return fmt.Errorf("position %d of %d: %w", position, len(board.Columns), domain.ErrInvalidIndex)
			}
			moved, err := view.HandleDragEnd(ctx, app.DragResult{
				Type:        app.DragColumn,
				DraggableID: args[1],
				Source:      app.Location{DroppableID: board.ID, Index: from},
				Destination: &app.Location{DroppableID: board.ID, Index: position - 1},
			})
			if err != nil {
				return c.userError(err)
			}
			if !moved {
				_, _ = fmt.Fprintln(c.stdout, "column already at that position")
				return nil
			}
			board, _ = view.Board()
			c.printBoard(c.stdout, board)
			return nil
		}),
	})
	return cmd
}

func (c *cli) taskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit or delete tasks",
	}

	var description string
	add := &cobra.Command{
		Use:   "add <boardID> <columnID> <title>",
		Short: "Add a task to a column",
		Args:  cobra.ExactArgs(3),
	}
	add.Flags().StringVar(&description, "description", "", "task description")
	add.RunE = c.withRuntime("task add", func(ctx context.Context, args []string) error {
		view, err := c.loadBoard(ctx, args[0])
		if err != nil {
			return err
		}
		if err := view.AddTask(ctx, args[1], args[2], description); err != nil {
			return c.userError(err)
		}
		board, _ := view.Board()
		c.printBoard(c.stdout, board)
		return nil
	})

	del := &cobra.Command{
		Use:   "delete <boardID> <taskID>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		RunE: c.withRuntime("task delete", func(ctx context.Context, args []string) error {
			view, err := c.loadBoard(ctx, args[0])
			if err != nil {
				return err
			}
			board, _ := view.Board()
			task, ok := findTask(board, args[1])
			if !ok {
				return fmt.Errorf("task %q: %w", args[1], app.ErrNotFound)
			}
			view.RequestDeleteTask(task)
			if err := view.ConfirmDelete(ctx); err != nil {
				return c.userError(err)
			}
			_, _ = fmt.Fprintf(c.stdout, "deleted task %s\n", task.Title)
			return nil
		}),
	}
	var editTitle, editDescription string
	edit := &cobra.Command{
		Use:   "edit <boardID> <taskID>",
		Short: "Edit a task title or description",
		Args:  cobra.ExactArgs(2),
	}
	edit.Flags().StringVar(&editTitle, "title", "", "new task title")
	edit.Flags().StringVar(&editDescription, "description", "", "new task description")
	edit.RunE = c.withRuntime("task edit", func(ctx context.Context, args []string) error {
		view, err := c.loadBoard(ctx, args[0])
		if err != nil {
			return err
		}
		board, _ := view.Board()
		task, ok := findTask(board, args[1])
		if !ok {
			return fmt.Errorf("task %q: %w", args[1], app.ErrNotFound)
		}
		if edit.Flags().Changed("title") {
			task.Title = editTitle
		}
		if edit.Flags().Changed("description") {
			task.Description = editDescription
		}
		if err := view.EditTask(ctx, task); err != nil {
			return c.userError(err)
		}
		board, _ = view.Board()
		c.printBoard(c.stdout, board)
		return nil
	})
	cmd.AddCommand(add, edit, del)
	return cmd
}

func (c *cli) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <boardID>",
		Short: "Open a board in the terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: c.withRuntime("open", func(ctx context.Context, args []string) error {
			if _, err := c.requireSignIn(ctx); err != nil {
				return err
			}
			toasts := tui.NewToasts()
			view := c.boardView(ctx, app.Notifiers{toasts, c.logger})
			m := tui.NewModel(view, args[0],
				tui.WithContext(ctx),
				tui.WithCatalog(c.catalog),
				tui.WithToasts(toasts),
				tui.WithConfirmDelete(c.cfg.UI.ConfirmDelete),
			)

			// Runtime logs stay in the dev file while the board is on screen.
			c.logger.SetConsoleEnabled(false)
			defer c.logger.SetConsoleEnabled(true)
			c.logger.Info("tui start", "board_id", args[0])
			if _, err := programFactory(m).Run(); err != nil {
				return fmt.Errorf("run tui program: %w", err)
			}
			c.logger.Info("tui exit", "board_id", args[0])
			return nil
		}),
	}
}

// loadBoard signs-in-checks and loads one board into a fresh view.
func (c *cli) loadBoard(ctx context.Context, boardID string) (*app.BoardView, error) {
	if _, err := c.requireSignIn(ctx); err != nil {
		return nil, err
	}
	view := c.boardView(ctx, c.logger)
	if err := view.Load(ctx, boardID); err != nil {
		return nil, c.userError(err)
	}
	return view, nil
}

// userError localizes remote failures and passes local ones through.
func (c *cli) userError(err error) error {
	var apiErr *app.APIError
	if errors.As(err, &apiErr) {
		return errors.New(c.catalog.ErrorMessage(err))
	}
	return err
}

// printBoard writes a plain outline of board.
func (c *cli) printBoard(w io.Writer, board domain.Board) {
	_, _ = fmt.Fprintln(w, c.catalog.BoardHeader(board.Title))
	if board.Description != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", c.catalog.DescriptionLabel(), board.Description)
	}
	for idx, column := range board.Columns {
		_, _ = fmt.Fprintf(w, "%d. %s [%s]\n", idx+1, column.Title, column.ID)
		for _, task := range column.Tasks {
			_, _ = fmt.Fprintf(w, "   - %s [%s]\n", task.Title, task.ID)
		}
	}
}

// Terminal hooks; tests replace them.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// passwordOrPrompt returns value, or a password read from stdin. A terminal
// reads without echo; piped input reads one line.
func (c *cli) passwordOrPrompt(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	_, _ = fmt.Fprint(c.stderr, "password: ")
	if f, ok := c.stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		secret, err := readPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if len(secret) == 0 {
			return "", errors.New("password is required")
		}
		return string(secret), nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func findTask(board domain.Board, taskID string) (domain.Task, bool) {
	for _, column := range board.Columns {
		if task, ok := column.TaskByID(taskID); ok {
			return task, true
		}
	}
	return domain.Task{}, false
}

func truncateText(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit-1]) + "…"
}
