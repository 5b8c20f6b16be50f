package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/persistence"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/repository/memstore"
	"github.com/spec-kit/workforce-service/internal/roster"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

type scoreRow struct {
	WorkerID string `json:"worker_id"`
	Name     string `json:"name"`
	Team     string `json:"team,omitempty"`
	Active   bool   `json:"active"`
	scoring.StressMetrics
}

func (a *app) scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Show stress metrics per worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dataset()
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			workers := d.Workers
			if key, _ := cmd.Flags().GetString("worker"); key != "" {
				id, ok := d.WorkerID(key)
				if !ok {
					return fmt.Errorf("unknown worker %q", key)
				}
				w, _ := d.Worker(id)
				workers = []domain.Worker{w}
			}

			members := engine.Members(workers, d.ItemsByWorker())
			sort.SliceStable(members, func(i, j int) bool { return members[i].Score > members[j].Score })

			rows := make([]scoreRow, 0, len(members))
			for _, m := range members {
				rows = append(rows, scoreRow{
					WorkerID:      m.Worker.ID,
					Name:          m.Worker.Name,
					Team:          d.TeamName(m.Worker.TeamID),
					Active:        m.Worker.Active,
					StressMetrics: m.StressMetrics,
				})
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), rows)
			}

			tw := newTable(cmd.OutOrStdout(), table.Row{"Worker", "Team", "Active items", "Priority sum", "Days to deadline", "Score", "Status"})
			for _, r := range rows {
				name := r.Name
				if !r.Active {
					name = mutedStyle.Render(name + " (inactive)")
				}
				tw.AppendRow(table.Row{name, r.Team, r.ActiveItemCount, r.SumPriority, r.DaysToNearestDeadline, r.Score, badge(r.Status)})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().String("worker", "", "only this worker (id or name)")
	return cmd
}

func (a *app) conflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List a worker's items due inside a leave window",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dataset()
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			key, _ := cmd.Flags().GetString("worker")
			id, ok := d.WorkerID(key)
			if !ok {
				return fmt.Errorf("unknown worker %q", key)
			}
			from, err := parseDateFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := parseDateFlag(cmd, "to")
			if err != nil {
				return err
			}

			conflicts := engine.CheckConflicts(d.ItemsByWorker()[id], from, to)
			if a.jsonOutput() {
				if conflicts == nil {
					conflicts = []string{}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"worker_id": id, "conflicts": conflicts})
			}
			if len(conflicts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
				return nil
			}
			for _, c := range conflicts {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+c)
			}
			return nil
		},
	}
	cmd.Flags().String("worker", "", "worker id or name")
	cmd.Flags().String("from", "", "first day of leave (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last day of leave (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("worker")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

type rankRow struct {
	Rank            int    `json:"rank"`
	WorkerID        string `json:"worker_id"`
	Name            string `json:"name"`
	Team            string `json:"team,omitempty"`
	MatchReason     string `json:"match_reason"`
	StressScore     int    `json:"stress_score"`
	ConflictWarning string `json:"conflict_warning,omitempty"`
}

func (a *app) rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank active employees for a new work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dataset()
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			top, _ := cmd.Flags().GetInt("top")
			team, _ := cmd.Flags().GetString("team")
			deadline, err := parseDateFlag(cmd, "deadline")
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}

			teamID := ""
			if team != "" {
				teamID = roster.StableID(team)
			}
			var candidates []domain.Worker
			for _, w := range d.Workers {
				if !w.Active || w.Role != domain.RoleEmployee {
					continue
				}
				if teamID != "" && !w.InTeam(teamID) {
					continue
				}
				candidates = append(candidates, w)
			}

			draft := scoring.TaskDraft{Title: title, Description: description, Deadline: deadline}
			ranked := scoring.Top(engine.RankCandidates(draft, candidates, d.ItemsByWorker(),
				d.LeavesByWorker(domain.LeaveStatusPending, domain.LeaveStatusApproved)), top)

			rows := make([]rankRow, 0, len(ranked))
			for i, s := range ranked {
				rows = append(rows, rankRow{
					Rank:            i + 1,
					WorkerID:        s.Worker.ID,
					Name:            s.Worker.Name,
					Team:            d.TeamName(s.Worker.TeamID),
					MatchReason:     s.MatchReason,
					StressScore:     s.StressScore,
					ConflictWarning: s.ConflictWarning,
				})
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), rows)
			}

			tw := newTable(cmd.OutOrStdout(), table.Row{"#", "Worker", "Team", "Match", "Stress", "Warning"})
			for _, r := range rows {
				tw.AppendRow(table.Row{r.Rank, r.Name, r.Team, r.MatchReason, badge(scoring.Classify(r.StressScore)) + fmt.Sprintf(" %d", r.StressScore), r.ConflictWarning})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().String("title", "", "work item title")
	cmd.Flags().String("description", "", "work item description")
	cmd.Flags().String("deadline", "", "work item deadline (YYYY-MM-DD)")
	cmd.Flags().String("team", "", "restrict candidates to this roster team key")
	cmd.Flags().Int("top", 3, "number of suggestions; 0 shows all")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func (a *app) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run migrations and upsert the roster into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dataset()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
				cfg.Postgres.DSN = dsn
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			cfg.Logger.Output = "stderr"

			logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var repos roster.Repositories
			if dryRun {
				store := memstore.New()
				repos = roster.Repositories{Teams: store.Teams(), Workers: store.Workers(), Items: store.WorkItems(), Leaves: store.Leaves()}
			} else {
				if cfg.Postgres.DSN == "" {
					return errors.New("no database configured: set POSTGRES_DSN or --dsn, or use --dry-run")
				}
				pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
					return err
				}
				pool := pg.PoolHandle()
				repos = roster.Repositories{
					Teams:   repository.NewTeamRepository(pool),
					Workers: repository.NewWorkerRepository(pool),
					Items:   repository.NewWorkItemRepository(pool),
					Leaves:  repository.NewLeaveRepository(pool),
				}
			}

			report, err := roster.NewSeeder(repos, cfg.Auth.BcryptCost, logger).Seed(ctx, d)
			if err != nil {
				logger.Error("seed failed", zap.Error(err))
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), report)
			}
			tw := newTable(cmd.OutOrStdout(), table.Row{"Table", "Created", "Updated"})
			tw.AppendRow(table.Row{"teams", report.Teams.Created, report.Teams.Updated})
			tw.AppendRow(table.Row{"workers", report.Workers.Created, report.Workers.Updated})
			tw.AppendRow(table.Row{"work_items", report.Items.Created, report.Items.Updated})
			tw.AppendRow(table.Row{"leave_windows", report.Leaves.Created, report.Leaves.Updated})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().String("dsn", "", "PostgreSQL DSN (defaults to POSTGRES_DSN)")
	cmd.Flags().Bool("dry-run", false, "seed into memory only and report what would be written")
	return cmd
}
