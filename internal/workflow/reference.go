package workflow

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fliptrack/internal/backend"
	"fliptrack/internal/core"
	"fliptrack/internal/listing"
)

// ErrCorruptListing is returned when a listing had data rows but none of
// them could be decoded. An empty listing is not an error.
var ErrCorruptListing = errors.New("listing could not be decoded")

// ReferenceData is what the entry form checks against for one project.
type ReferenceData struct {
	ProjectID   int64
	ProjectName string
	Rooms       []core.Room
	Budget      core.Money
	Spent       core.Money
	BudgetKnown bool

	RoomsReport listing.Report
}

// HasRoom reports whether the project has a room with exactly this name.
func (r ReferenceData) HasRoom(name string) bool {
	for _, room := range r.Rooms {
		if room.Name == name {
			return true
		}
	}
	return false
}

// LoadReferenceData fetches and decodes a project's rooms and budget. Rooms
// and the budget panel are fetched concurrently. When the panel cannot be
// read, the budget comes from the project listing and the spent amount from
// the expense listing. A budget that cannot be found either way is left
// unknown, which disables budget warnings; a bad room listing is an error.
func LoadReferenceData(ctx context.Context, gw backend.Gateway, projectID int64) (ReferenceData, error) {
	ref := ReferenceData{ProjectID: projectID}

	var (
		roomsText, budgetText string
		budgetErr             error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := gw.ListRooms(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list rooms: %w", err)
		}
		roomsText = text
		return nil
	})
	g.Go(func() error {
		budgetText, budgetErr = gw.BudgetStatus(gctx, projectID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ReferenceData{}, err
	}

	rooms, rep := listing.DecodeRooms(roomsText)
	if rep.Corrupt() {
		return ReferenceData{}, fmt.Errorf("room listing for project %d: %w", projectID, ErrCorruptListing)
	}
	ref.Rooms, ref.RoomsReport = rooms, rep

	if budgetErr == nil {
		if status, ok := listing.DecodeBudget(budgetText); ok {
			ref.ProjectName = status.ProjectName
			ref.Budget, ref.Spent, ref.BudgetKnown = status.Budget, status.Spent, true
			return ref, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return ReferenceData{}, err
	}
	return fallbackBudget(ctx, gw, ref)
}

func fallbackBudget(ctx context.Context, gw backend.Gateway, ref ReferenceData) (ReferenceData, error) {
	var projectsText, expensesText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := gw.ListProjects(gctx)
		projectsText = text
		return err
	})
	g.Go(func() error {
		text, err := gw.ListExpenses(gctx, ref.ProjectID)
		expensesText = text
		return err
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ReferenceData{}, ctxErr
		}
		// No budget is better than no form.
		return ref, nil
	}

	projects, _ := listing.DecodeProjects(projectsText)
	for _, p := range projects {
		if p.ID == ref.ProjectID {
			ref.ProjectName = p.Name
			ref.Budget = p.Budget
			ref.BudgetKnown = true
			break
		}
	}
	expenses, rep := listing.DecodeExpenses(expensesText)
	if rep.Corrupt() {
		ref.BudgetKnown = false
		return ref, nil
	}
	ref.Spent = core.SumCosts(expenses)
	return ref, nil
}
