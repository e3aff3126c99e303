package cmd

import (
	"os"
	"strings"

	errlog "github.com/thoherr/vacuum-docker-registry/log"
	"github.com/thoherr/vacuum-docker-registry/registry"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCAFile       string
	rootCatalogCount int
	rootInsecure     bool
	rootLogLevel     string
	rootRegistry     string
	rootWorkers      int
)

var rootCmd = &cobra.Command{
	Use:          "vacuum-docker-registry",
	Short:        "Inspect and clean up a Docker registry via the V2 HTTP API",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mustInitLogging(viper.GetString("log.level"))
	},
}

func mustInitLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Fatal(err)
	}

	log.SetLevel(lvl)
}

// mustRegistry builds the registry client from the persistent flags and their
// VACUUM_* environment counterparts.
func mustRegistry() *registry.Registry {
	reg, err := registry.New(registry.Opts{
		Address:         viper.GetString("registry.address"),
		CAFile:          viper.GetString("registry.ca-file"),
		CatalogPageSize: viper.GetInt("registry.count"),
		Insecure:        viper.GetBool("registry.insecure"),
		Logger:          log.StandardLogger(),
		Workers:         viper.GetInt("workers"),
	})
	if err != nil {
		fatal(err)
	}

	return reg
}

func fatal(err error) {
	log.Debug(errlog.FormatError(err))
	log.Fatal(err)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootRegistry, "registry.address", "", "base URL of the docker registry, e.g. https://registry.example:5000")
	rootCmd.PersistentFlags().StringVar(&rootCAFile, "registry.ca-file", "", "path to a PEM file with additional trusted CA certificates")
	rootCmd.PersistentFlags().BoolVar(&rootInsecure, "registry.insecure", false, "disable certificate validation")
	rootCmd.PersistentFlags().IntVar(&rootCatalogCount, "registry.count", 250, "maximum number of repositories requested from the catalog")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log.level", "warn", "set the log level")
	rootCmd.PersistentFlags().IntVar(&rootWorkers, "workers", 1, "number of concurrent manifest fetches during size scans")
	viper.BindPFlag("registry.address", rootCmd.PersistentFlags().Lookup("registry.address"))
	viper.BindPFlag("registry.ca-file", rootCmd.PersistentFlags().Lookup("registry.ca-file"))
	viper.BindPFlag("registry.insecure", rootCmd.PersistentFlags().Lookup("registry.insecure"))
	viper.BindPFlag("registry.count", rootCmd.PersistentFlags().Lookup("registry.count"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log.level"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.SetEnvPrefix("vacuum")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}
