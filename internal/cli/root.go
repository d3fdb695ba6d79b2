// Package cli implements the fleetctl command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ukydev/fleet-dashboard/internal/config"
	"github.com/ukydev/fleet-dashboard/internal/db"
	"github.com/ukydev/fleet-dashboard/internal/fixtures"
	"github.com/ukydev/fleet-dashboard/internal/models"
	"github.com/ukydev/fleet-dashboard/internal/settings"
)

const defaultSettingsFile = "~/.fleetctl-settings.json"

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *log.Logger
	now     func() time.Time
}

// NewRootCmd builds the fleetctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: log.New(), now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "Query and export the fleet operations dashboard records.",
		Long: `fleetctl resolves vehicle rental status, lists filtered records,
derives notifications and exports reports from the fixture data or MongoDB.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.fleetctl.yaml)")
	flags.StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	flags.String("source", config.SourceFixtures, "Record source: fixtures or mongo")
	flags.String("mongo-uri", "", "MongoDB connection string")
	flags.String("mongo-db", "fleet", "MongoDB database name")
	flags.String("settings-file", defaultSettingsFile, "Preferences file used by settings and notifications")
	for _, name := range []string{"loglevel", "source", "mongo-uri", "mongo-db", "settings-file"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		a.statusCmd(),
		a.vehiclesCmd(),
		a.notificationsCmd(),
		a.searchCmd(),
		a.exportCmd(),
		a.settingsCmd(),
		a.seedCmd(),
	)
	return rootCmd
}

// Execute runs fleetctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads the config file and FLEETCTL_* environment variables.
func (a *app) initConfig(stderr io.Writer) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".fleetctl")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("fleetctl")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := log.ParseLevel(a.v.GetString("loglevel"))
	if err != nil {
		return err
	}
	a.logger.SetOutput(stderr)
	a.logger.SetLevel(level)
	a.logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// records opens the configured record store. The returned func releases it.
func (a *app) records(ctx context.Context) (db.RecordStore, func(), error) {
	switch source := strings.ToLower(a.v.GetString("source")); source {
	case config.SourceFixtures:
		return db.NewMemoryStore(fixtures.Snapshot(a.now())), func() {}, nil
	case config.SourceMongo:
		store, closeFn, err := a.mongoStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", source)
	}
}

func (a *app) mongoStore(ctx context.Context) (*db.MongoRecordStore, func(), error) {
	uri := a.v.GetString("mongo-uri")
	if uri == "" {
		return nil, nil, errors.New("mongo source requires --mongo-uri")
	}
	client, err := db.ConnectMongo(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			a.logger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}
	return db.NewMongoRecordStore(client.Database(a.v.GetString("mongo-db")), 0), closeFn, nil
}

func (a *app) snapshot(ctx context.Context) (models.Snapshot, error) {
	store, closeFn, err := a.records(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer closeFn()
	return store.Snapshot(ctx)
}

func (a *app) settingsStore() (*settings.FileStore, error) {
	path, err := homedir.Expand(a.v.GetString("settings-file"))
	if err != nil {
		return nil, err
	}
	return settings.NewFileStore(path), nil
}

func (a *app) preferences(ctx context.Context) (models.Settings, error) {
	store, err := a.settingsStore()
	if err != nil {
		return models.Settings{}, err
	}
	return store.Load(ctx, "")
}
