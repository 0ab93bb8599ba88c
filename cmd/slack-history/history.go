package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chrisedwards/slack-history/internal/config"
	"github.com/chrisedwards/slack-history/internal/export"
	"github.com/chrisedwards/slack-history/internal/slack"
)

var (
	configPath string
	channelsF  []string
	excludeF   []string
	dateF      string
	beginF     int64
	endF       int64
	timezoneF  string
	formatF    string
	debugF     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/slack-history/slack-history.yaml)")

	flags := rootCmd.Flags()
	flags.StringSliceVar(&channelsF, "channel", nil, "channel name or glob to fetch (repeatable, default daily-logs)")
	flags.StringSliceVar(&excludeF, "exclude", nil, "glob of channel names to skip (repeatable)")
	flags.StringVar(&dateF, "date", "", "report day as YYYY-MM-DD (default yesterday)")
	flags.Int64Var(&beginF, "begin", 0, "window start as Unix seconds (use with --end)")
	flags.Int64Var(&endF, "end", 0, "window end as Unix seconds (use with --begin)")
	flags.StringVar(&timezoneF, "timezone", "", "time zone used for day boundaries (default Local)")
	flags.StringVar(&formatF, "format", "", "output format: json, text, ndjson or csv (default json)")
	flags.BoolVar(&debugF, "debug", false, "debug level for logs")

	rootCmd.MarkFlagsRequiredTogether("begin", "end")
	rootCmd.MarkFlagsMutuallyExclusive("date", "begin")
	rootCmd.MarkFlagsMutuallyExclusive("date", "end")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "load .env")
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debugF {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	window, err := resolveWindow(cmd, loc)
	if err != nil {
		return err
	}

	creds, err := slack.NewCredentials(cfg.Token)
	if err != nil {
		return err
	}
	client := slack.NewClient(creds).
		WithBaseURL(cfg.APIURL).
		WithLogger(log)

	exporter, err := export.NewExporter(cfg, client, log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"channels": cfg.Channels,
		"oldest":   window.Start.Format("2006-01-02 15:04 MST"),
		"latest":   window.End.Format("2006-01-02 15:04 MST"),
	}).Info("fetching history")

	report, err := exporter.Run(cmd.Context(), window)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), cfg.Format, report, loc)
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("channel") {
		cfg.Channels = channelsF
	}
	if flags.Changed("exclude") {
		cfg.Exclude = excludeF
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezoneF
	}
	if flags.Changed("format") {
		cfg.Format = formatF
	}
}

// resolveWindow picks the history window: --begin/--end, then --date, then
// the day before today in loc.
func resolveWindow(cmd *cobra.Command, loc *time.Location) (export.Window, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("begin") || flags.Changed("end"):
		return export.EpochWindow(beginF, endF)
	case dateF != "":
		return export.DayWindowIn(dateF, loc)
	case loc == time.Local:
		return export.ParseWindow(export.DateWindow())
	}
	return export.DateWindowAt(time.Now(), loc), nil
}
