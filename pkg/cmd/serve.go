package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statkit/outlier/pkg/config"
	"github.com/statkit/outlier/pkg/metrics"
	"github.com/statkit/outlier/pkg/server"
)

func init() {
	ServeCmd.Flags().Int("port", config.DefaultPort, "port for API server")
	ServeCmd.Flags().String("bind", config.DefaultBind, "bind address for API server")
	RootCmd.AddCommand(ServeCmd)
}

var ServeCmd = &cobra.Command{
	Use:          "serve",
	Short:        "start the percentile calculation API server",
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetString("config"))
		if err != nil {
			return err
		}

		if err := cfg.Logging.Apply(log.StandardLogger()); err != nil {
			return err
		}

		// --debug wins over the config file level.
		if viper.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
		}

		// command line flags win over the config file.
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, err = cmd.Flags().GetInt("port")
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, err = cmd.Flags().GetString("bind")
			if err != nil {
				return err
			}
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		srv := server.New(cfg, metrics.New())
		return srv.Run(ctx)
	},
}
