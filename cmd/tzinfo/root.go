package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngrash/tzresolve/internal/config"
	"github.com/ngrash/tzresolve/internal/logging"
	"github.com/ngrash/tzresolve/zone"
	"github.com/ngrash/tzresolve/zonecache"
)

// rootOptions holds global flags and the state they produce.
type rootOptions struct {
	configPath string
	zoneinfo   []string
	archive    string
	logLevel   string

	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
	cache    *zonecache.Cache
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tzinfo",
		Short: "Inspect TZif files and query time zones",
		Long: `tzinfo decodes TZif files and answers questions about time zones:
the local time in effect at an instant, the transitions in a range and the
UTC instant of a local wall-clock reading.

Zones are named by identifier (Europe/Berlin), by POSIX TZ rule
(CET-1CEST,M3.5.0,M10.5.0/3) or by a path to a TZif file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML configuration file")
	cmd.PersistentFlags().StringSliceVar(&opts.zoneinfo, "zoneinfo", nil, "zoneinfo directories (overrides configuration)")
	cmd.PersistentFlags().StringVar(&opts.archive, "archive", "", "gzip-compressed tar archive of a zoneinfo tree searched before the directories")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newDumpCommand())
	cmd.AddCommand(newDiffCommand())
	cmd.AddCommand(newAtCommand(opts))
	cmd.AddCommand(newTransitionsCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(newPosixCommand())
	cmd.AddCommand(newZonesCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger and zone cache.
func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if len(o.zoneinfo) != 0 {
		cfg.ZoneinfoDirs = o.zoneinfo
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	o.log, o.closeLog, err = logging.New(cfg.Log)
	if err != nil {
		return err
	}

	src := zonecache.Dirs(cfg.ZoneinfoDirs...)
	if o.archive != "" {
		f, err := os.Open(o.archive)
		if err != nil {
			return err
		}
		defer f.Close()
		zones, err := zonecache.ReadArchive(f)
		if err != nil {
			return fmt.Errorf("read archive %s: %w", o.archive, err)
		}
		src = append(zonecache.Sources{zones}, src...)
	}
	o.cache, err = zonecache.New(src, cfg.CacheSize, o.log)
	return err
}

// zone returns the zone named by id, which may also be a path to a TZif
// file. An empty id selects the configured or system default zone.
func (o *rootOptions) zone(id string) (*zone.Table, error) {
	if id == "" {
		id = o.cfg.DefaultZone
	}
	if id == "" {
		id = zonecache.SystemDefault()
		o.log.Debug("using system default zone", slog.String("zone", id))
	}
	if fi, err := os.Stat(id); err == nil && !fi.IsDir() {
		b, err := os.ReadFile(id)
		if err != nil {
			return nil, err
		}
		return zone.Parse(id, b)
	}
	return o.cache.Zone(id)
}
