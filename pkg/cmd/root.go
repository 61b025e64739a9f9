package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/statkit/outlier/pkg/dataset"
	"github.com/statkit/outlier/pkg/stat"
)

var RootCmd = &cobra.Command{
	Use:   "outlier",
	Short: "calculate percentiles from numerical datasets",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		percentile, err := cmd.Flags().GetFloat64("percentile")
		if err != nil {
			return err
		}

		if percentile < 0.0 || percentile > 100.0 {
			return stat.ErrPercentileOutOfRange
		}

		file, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}

		var values []float64
		if file != "" {
			values, err = dataset.ReadFile(file)
			if err != nil {
				return err
			}
		} else if cmd.Flags().Changed("values") {
			values, err = cmd.Flags().GetFloat64Slice("values")
			if err != nil {
				return err
			}
		} else {
			return errors.New("must provide either --file or --values")
		}

		if len(values) == 0 {
			return errors.New("no values provided")
		}

		result, err := stat.Percentile(values, percentile)
		if err != nil {
			return err
		}

		fmt.Printf("Number of values: %d\n", len(values))
		fmt.Printf("Percentile (P%v): %.2f\n", percentile, result)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "", "config file")

	RootCmd.Flags().Float64P("percentile", "p", 95, "percentile to calculate (e.g. 95, 99)")
	RootCmd.Flags().StringP("file", "f", "", "input file (JSON or CSV format)")
	RootCmd.Flags().Float64SliceP("values", "v", nil, "direct values from command line (comma-separated)")
}

func Execute() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithError(err).Warn("failed to load .env file")
		}
	}

	log.SetFormatter(&prefixed.TextFormatter{})

	logger := log.StandardLogger()
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
