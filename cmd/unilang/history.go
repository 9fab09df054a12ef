package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/unilang/unilang/pkg/history"
	"github.com/unilang/unilang/pkg/output"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled in the config file)")

func (a *app) history(cmd *cobra.Command) (*history.History, func(any) error, error) {
	rt, err := a.runtime(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	h := rt.History()
	if h == nil {
		return nil, nil, errHistoryDisabled
	}
	render := func(data any) error { return rt.Render(data, "") }
	return h, render, nil
}

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit  int
		failed bool
		search string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show lines that were checked or run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, render, err := a.history(cmd)
			if err != nil {
				return err
			}
			var entries []*history.Entry
			switch {
			case search != "":
				entries = h.Search(search)
			case failed:
				entries = h.Failed()
			default:
				entries = h.Recent(limit)
			}
			return render(historyRows(entries))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failed lines")
	cmd.Flags().StringVar(&search, "search", "", "Only show lines containing this text")

	cmd.AddCommand(a.newHistoryStatsCmd())
	cmd.AddCommand(a.newHistoryTopCmd())
	cmd.AddCommand(a.newHistoryClearCmd())
	return cmd
}

func historyRows(entries []*history.Entry) *output.Rows {
	rows := &output.Rows{
		Cols:     []string{"id", "mode", "line", "outcome", "time"},
		Data:     make([]map[string]any, 0, len(entries)),
		Template: "{id}  {line}{{outcome != 'ok' ? '  (' + outcome + ')' : ''}}",
	}
	for _, e := range entries {
		outcome := "ok"
		if !e.Success {
			outcome = e.Error
		}
		rows.Data = append(rows.Data, map[string]any{
			"id":      e.ID,
			"mode":    e.Mode,
			"line":    e.Line,
			"outcome": outcome,
			"time":    e.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func (a *app) newHistoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, render, err := a.history(cmd)
			if err != nil {
				return err
			}
			s := h.Stats()
			return render(&output.Rows{
				Cols:     []string{"total", "successful", "failed", "average_ms"},
				Template: "{total} lines, {successful} ok, {failed} failed, {average_ms}ms average",
				Data: []map[string]any{{
					"total":      s.Total,
					"successful": s.Successful,
					"failed":     s.Failed,
					"average_ms": s.AverageDurationMS,
				}},
			})
		},
	}
}

func (a *app) newHistoryTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most used commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, render, err := a.history(cmd)
			if err != nil {
				return err
			}
			rows := &output.Rows{
				Cols:     []string{"command", "count"},
				Template: "{count}\t{command}",
			}
			for _, f := range h.MostUsed(limit) {
				rows.Data = append(rows.Data, map[string]any{"command": f.Command, "count": f.Count})
			}
			return render(rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of commands to show")
	return cmd
}

func (a *app) newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := a.history(cmd)
			if err != nil {
				return err
			}
			h.Clear()
			if err := h.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint("History cleared"))
			return nil
		},
	}
}
