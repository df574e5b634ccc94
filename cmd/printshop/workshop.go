package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/workshop"
	"github.com/spf13/cobra"
)

// promptConfirmer спрашивает y/N в терминале
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, job models.PrintJob, action workshop.Action) bool {
	fmt.Fprintf(p.out, "%s job #%d (%s)? [y/N] ", action, job.ID, job.Status)
	line, _ := bufio.NewReader(p.in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newWorkshopCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workshop",
		Short: "Drive print jobs through their lifecycle (admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// хук корня cobra сам не вызывает, если у команды есть свой
			if err := c.setup(cmd); err != nil {
				return err
			}
			if !c.app.Session.IsAdmin() {
				return errors.New("workshop is available to admins only, sign in with an admin account")
			}
			return nil
		},
	}

	var (
		status   string
		query    string
		page     int
		pageSize int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List print jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			board := c.app.NewBoard()
			if _, err := board.Reload(cmd.Context()); err != nil {
				return describe("load print jobs", err)
			}
			if pageSize <= 0 {
				pageSize = c.app.Config.Workshop.PageSize
			}
			p := board.Page(workshop.Filter{Status: status, Query: query}, page, pageSize)

			out := cmd.OutOrStdout()
			tw := table(out)
			fmt.Fprintln(tw, "JOB\tSTATUS\tPRINTER\tORDER\tPROGRESS\tACTIONS")
			for _, j := range p.Jobs {
				actions := make([]string, 0, 2)
				for _, a := range workshop.PermittedActions(j.Status) {
					actions = append(actions, string(a))
				}
				fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n", j.ID, jobBadge(j.Status), optID(j.PrinterID), optID(j.OrderID),
					progress(j.Progress), strings.Join(actions, ","))
			}
			tw.Flush()
			fmt.Fprintf(out, "page %d of %d (total %d)\n", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", workshop.StatusAll, "status filter or all")
	list.Flags().StringVarP(&query, "query", "q", "", "search by #id, status, printer or order")
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&pageSize, "page-size", 0, "jobs per page")

	cmd.AddCommand(list, newPreflightCmd(c))
	for _, action := range []workshop.Action{workshop.Start, workshop.Pause, workshop.Resume, workshop.Cancel} {
		cmd.AddCommand(newTransitionCmd(c, action))
	}
	return cmd
}

func newTransitionCmd(c *cli, action workshop.Action) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   string(action) + " <job-id>",
		Short: string(action) + " a print job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			board := c.app.NewBoard()
			if _, err := board.Reload(cmd.Context()); err != nil {
				return describe("load print jobs", err)
			}

			var confirmer workshop.Confirmer = promptConfirmer{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
			if yes {
				confirmer = workshop.ConfirmFunc(func(context.Context, models.PrintJob, workshop.Action) bool { return true })
			}

			err = board.Do(cmd.Context(), id, action, confirmer)
			if errors.Is(err, workshop.ErrDeclined) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing sent")
				return nil
			}
			if err != nil {
				return workshopError(string(action)+" job", err)
			}

			job, _ := board.Find(id)
			fmt.Fprintf(cmd.OutOrStdout(), "job #%d is now %s\n", id, jobBadge(job.Status))
			return nil
		},
	}
	if action.Destructive() {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	}
	return cmd
}

func newPreflightCmd(c *cli) *cobra.Command {
	checklist := models.DefaultChecklist()

	cmd := &cobra.Command{
		Use:   "preflight <job-id>",
		Short: "Submit the preflight checklist for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			board := c.app.NewBoard()
			if _, err := board.Reload(cmd.Context()); err != nil {
				return describe("load print jobs", err)
			}
			if err := board.Preflight(cmd.Context(), id, checklist); err != nil {
				return workshopError("submit preflight", err)
			}
			job, _ := board.Find(id)
			fmt.Fprintf(cmd.OutOrStdout(), "job #%d is now %s\n", id, jobBadge(job.Status))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checklist.BedCleared, "bed-cleared", true, "print bed is cleared")
	cmd.Flags().BoolVar(&checklist.FilamentOK, "filament-ok", true, "filament is loaded")
	cmd.Flags().BoolVar(&checklist.NozzleOK, "nozzle-ok", true, "nozzle is ready")
	return cmd
}

// workshopError - локальные отказы показываем как есть, ошибки бэкенда через describe
func workshopError(what string, err error) error {
	switch {
	case errors.Is(err, workshop.ErrActionNotPermitted),
		errors.Is(err, workshop.ErrBusy),
		errors.Is(err, workshop.ErrJobNotFound),
		errors.Is(err, workshop.ErrChecklist):
		return fmt.Errorf("could not %s: %w", what, err)
	}
	return describe(what, err)
}
