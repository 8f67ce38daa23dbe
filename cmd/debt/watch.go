package main

import (
	"time"

	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/Veraticus/debt-manager/internal/tui"
	"github.com/Veraticus/debt-manager/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of limit usage",
		Long: `Open a terminal dashboard that re-evaluates every limit on an interval.
Press r to refresh immediately and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reporter := report.NewReporter(store)
			loc := cfg.Location

			return tui.Run(ctx, reporter.LimitStatuses,
				tui.WithInterval(cfg.RefreshInterval),
				tui.WithTheme(themes.ByName(viper.GetString("watch.theme"))),
				tui.WithClock(func() time.Time { return time.Now().In(loc) }),
			)
		},
	}

	cmd.Flags().Duration("interval", 0, "refresh interval (default from watch.interval, 30s)")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin)")
	_ = viper.BindPFlag("watch.interval", cmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("watch.theme", cmd.Flags().Lookup("theme"))

	return cmd
}
