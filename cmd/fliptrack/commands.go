package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fliptrack/internal/cli"
	"fliptrack/internal/listing"
	"fliptrack/internal/log"
	"fliptrack/internal/validation"
	"fliptrack/internal/workflow"
)

var (
	errNotSubmitted    = errors.New("expense not submitted")
	errJournalDisabled = errors.New("submission journal is disabled; set FLIPTRACK_JOURNAL_PATH")
)

func warnSkipped(app *cli.App, what string, rep listing.Report) {
	if rep.Skipped > 0 {
		app.Logger.Warn("Skipped undecodable listing rows",
			"listing", what, log.FieldDecoded, rep.Decoded, log.FieldSkipped, rep.Skipped)
	}
}

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				text, err := app.Gateway.ListProjects(ctx)
				if err != nil {
					return err
				}
				projects, rep := listing.DecodeProjects(text)
				if rep.Corrupt() {
					return fmt.Errorf("project list: %w", workflow.ErrCorruptListing)
				}
				warnSkipped(app, "projects", rep)
				return out.projects(projects)
			})
		},
	}
}

func newRoomsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms <project-id>",
		Short: "List the rooms of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				text, err := app.Gateway.ListRooms(ctx, projectID)
				if err != nil {
					return err
				}
				rooms, rep := listing.DecodeRooms(text)
				if rep.Corrupt() {
					return fmt.Errorf("room list: %w", workflow.ErrCorruptListing)
				}
				warnSkipped(app, "rooms", rep)
				return out.rooms(rooms)
			})
		},
	}
}

func newExpensesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expenses <project-id>",
		Short: "List the expenses of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				text, err := app.Gateway.ListExpenses(ctx, projectID)
				if err != nil {
					return err
				}
				expenses, rep := listing.DecodeExpenses(text)
				if rep.Corrupt() {
					return fmt.Errorf("expense list: %w", workflow.ErrCorruptListing)
				}
				warnSkipped(app, "expenses", rep)
				return out.expenses(expenses)
			})
		},
	}
}

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "budget <project-id>",
		Short: "Show budget, spend and usage of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				ref, err := workflow.LoadReferenceData(ctx, app.Gateway, projectID)
				if err != nil {
					return err
				}
				return out.budget(ref)
			})
		},
	}
}

type addExpenseFlags struct {
	values  map[string]*string
	newRoom bool
	yes     bool
}

func newAddExpenseCmd(opts *rootOptions) *cobra.Command {
	f := &addExpenseFlags{values: make(map[string]*string)}
	cmd := &cobra.Command{
		Use:   "add-expense <project-id>",
		Short: "Validate and record an expense against a project",
		Long: `Validate and record an expense against a project.

A room that does not exist yet can be created on the way: pass --new-room,
answer the prompt, or pass --yes to create it without asking.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				return addExpense(ctx, cmd, app, out, projectID, f)
			})
		},
	}

	flags := cmd.Flags()
	for _, opt := range []struct{ flag, field, usage string }{
		{"room", validation.FieldRoom, "room name"},
		{"category", validation.FieldCategory, "material or labor"},
		{"cost", validation.FieldCost, "cost in dollars"},
		{"hours", validation.FieldHours, "hours worked (labor only)"},
		{"condition", validation.FieldCondition, "room condition after the work, 1-5"},
		{"notes", validation.FieldNotes, "free-form notes"},
		{"date", validation.FieldDate, "expense date, YYYY-MM-DD"},
	} {
		f.values[opt.field] = flags.String(opt.flag, "", opt.usage)
	}
	flags.BoolVar(&f.newRoom, "new-room", false, "the room is new; offer to create it")
	flags.BoolVar(&f.yes, "yes", false, "create a missing room without asking")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("cost")
	return cmd
}

func addExpense(ctx context.Context, cmd *cobra.Command, app *cli.App, out *printer, projectID int64, f *addExpenseFlags) error {
	ctrl := app.Workflow()
	defer ctrl.Close()

	if err := ctrl.SelectProject(ctx, projectID); err != nil {
		return err
	}
	if f.newRoom {
		if _, err := ctrl.SetCustomRoom(true); err != nil {
			return err
		}
	}
	for _, field := range formFields {
		if !cmd.Flags().Changed(flagFor(field)) {
			continue
		}
		if _, err := ctrl.SetField(field, *f.values[field]); err != nil {
			return err
		}
	}
	notes := validation.Verdicts{}
	for name, v := range ctrl.Snapshot().Verdicts {
		if !v.Blocking() {
			notes[name] = v
		}
	}

	prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), f.yes)
	res, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	confirmed := false
	if res.Outcome == workflow.Blocked && res.MissingRoom != "" {
		if !prompt.confirm(fmt.Sprintf("Room '%s' is not in this project. Create it?", res.MissingRoom)) {
			if err := out.submission(res, notes); err != nil {
				return err
			}
			return errNotSubmitted
		}
		confirmed = true
		if _, err := ctrl.SetCustomRoom(true); err != nil {
			return err
		}
		if res, err = ctrl.Submit(ctx); err != nil {
			return err
		}
	}
	if res.Outcome == workflow.NeedsRoomConfirmation {
		create := confirmed || prompt.confirm(fmt.Sprintf("Create room '%s'?", res.Expense.RoomName))
		if res, err = ctrl.ConfirmCreateRoom(ctx, create); err != nil {
			return err
		}
	}

	if err := out.submission(res, notes); err != nil {
		return err
	}
	switch res.Outcome {
	case workflow.Blocked:
		return errNotSubmitted
	case workflow.Failed:
		return fmt.Errorf("%w: %s", errNotSubmitted, res.Message)
	}
	return nil
}

func flagFor(field string) string {
	if field == validation.FieldRoom {
		return "room"
	}
	return field
}

func newDeleteExpenseCmd(opts *rootOptions) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "delete-expense <expense-id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expenseID, err := parseID("expense", args[0])
			if err != nil {
				return err
			}
			projectID, err := parseID("project", project)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				ctrl := app.Workflow()
				defer ctrl.Close()
				if err := ctrl.SelectProject(ctx, projectID); err != nil {
					return err
				}
				if err := ctrl.DeleteExpense(ctx, expenseID); err != nil {
					return err
				}
				if out.json {
					return out.encode(map[string]int64{"deleted": expenseID, "projectId": projectID})
				}
				out.line("Deleted expense %d", expenseID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project the expense belongs to")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <project-id>",
		Short: "Show journaled add-expense attempts for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, app *cli.App, out *printer) error {
				if app.Journal == nil {
					return errJournalDisabled
				}
				subs, err := app.Journal.Recent(ctx, projectID, limit)
				if err != nil {
					return err
				}
				return out.history(subs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}

// prompter asks yes/no questions on the command's input.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	assume bool
}

func newPrompter(in io.Reader, out io.Writer, assumeYes bool) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, assume: assumeYes}
}

func (p *prompter) confirm(question string) bool {
	if p.assume {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
