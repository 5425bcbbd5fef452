package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/communication"
	"github.com/Domenick1991/skybooking/internal/logger"
	"github.com/Domenick1991/skybooking/internal/secrets"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var Version = "dev"

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Operator CLI for the bookings service",
		Long:          `Talks to the bookings service and its collaborators with the service identity from the config file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "config.yaml", "config file")

	rootCmd.AddCommand(tokenCmd(c))
	rootCmd.AddCommand(bookCmd(c))
	rootCmd.AddCommand(getCmd(c))
	rootCmd.AddCommand(flightCmd(c))
	rootCmd.AddCommand(eventsCmd(c))

	return rootCmd
}

// loadConfig reads the file through viper so BOOKINGCTL_* variables override
// keys present in it (BOOKINGCTL_IDENTITY_CREDENTIAL for identity.credential),
// then hands the merged settings to config.Parse.
func (c *cli) loadConfig() error {
	c.v.SetConfigFile(c.cfgFile)
	c.v.SetConfigType("yaml")
	c.v.SetEnvPrefix("BOOKINGCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", c.cfgFile, err)
	}

	data, err := yaml.Marshal(c.v.AllSettings())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}

	log, err := logger.NewWithOutput(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	return nil
}

func (c *cli) communicator(ctx context.Context) (*communication.Communicator, error) {
	credential, err := secrets.IdentityCredential(ctx, c.cfg.Identity)
	if err != nil {
		return nil, err
	}
	return communication.New(c.cfg.Identity, credential, c.cfg.Services, communication.WithLogger(c.log))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
