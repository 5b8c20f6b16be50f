package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/roster"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("WFCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "wfctl",
		Short: "Workforce wellness tooling",
		Long: `wfctl scores a roster file offline and seeds it into PostgreSQL.

A roster is YAML with teams, workers, items and leaves. Item assignees may be
worker ids or, for older files, worker names. Dates that do not parse are
treated as absent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("file", "f", "roster.yaml", "roster file")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().String("now", "", "evaluate as of this date (YYYY-MM-DD)")
	_ = a.v.BindPFlag("file", root.PersistentFlags().Lookup("file"))
	_ = a.v.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = a.v.BindPFlag("now", root.PersistentFlags().Lookup("now"))

	root.AddCommand(a.scoreCmd())
	root.AddCommand(a.conflictsCmd())
	root.AddCommand(a.rankCmd())
	root.AddCommand(a.seedCmd())
	return root
}

func (a *app) jsonOutput() bool {
	return a.v.GetBool("json")
}

func (a *app) dataset() (*roster.Dataset, error) {
	r, err := roster.Load(a.v.GetString("file"))
	if err != nil {
		return nil, err
	}
	return r.Dataset()
}

func (a *app) engine() (*scoring.Engine, error) {
	engine := scoring.New()
	raw := a.v.GetString("now")
	if raw == "" {
		return engine, nil
	}
	day, ok := domain.ParseDate(raw)
	if !ok {
		return nil, fmt.Errorf("invalid --now date %q", raw)
	}
	fixed := day.Time()
	engine.Now = func() time.Time { return fixed }
	return engine, nil
}

func parseDateFlag(cmd *cobra.Command, name string) (domain.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	day, ok := domain.ParseDate(raw)
	if !ok {
		return domain.Date{}, fmt.Errorf("invalid --%s date %q", name, raw)
	}
	return day, nil
}
