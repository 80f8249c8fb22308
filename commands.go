package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ahmad-alkadri/simple-blob-manager/internal/api"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/config"
	"github.com/ahmad-alkadri/simple-blob-manager/internal/logging"
)

var (
	cfgFile string
	v       *viper.Viper
)

// newRootCmd builds the command tree over a fresh viper instance. The config
// file is read once per execution, before any command runs.
func newRootCmd() *cobra.Command {
	cfgFile = ""
	v = config.NewViper()

	root := &cobra.Command{
		Use:           "simple-blob-manager",
		Short:         "HTTP gateway for exists/get/add/delete on a blob container",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig()
		},
		RunE: runServe,
	}
	initRootFlags(root)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the data endpoint (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newBlobCmd(api.OpExists, "exists <path>", "Report whether a blob exists"),
		newBlobCmd(api.OpGet, "get <path>", "Write a blob to stdout"),
		newBlobCmd(api.OpAdd, "add <path> [file]", "Upload a file (or stdin) as a blob"),
		newBlobCmd(api.OpDelete, "delete <path>", "Delete a blob"),
	)
	return root
}

func initConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("blobmanager")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "blobmanager"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func bindConfig(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func initRootFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML or TOML)")

	flags.String("host", "0.0.0.0", "listen host")
	flags.String("port", "3003", "listen port")
	flags.String("provider", config.ProviderAzure, "storage provider: azure|minio|s3|gcs|local")
	flags.String("connection-string", "", "storage connection string")
	flags.String("container", "", "container used by GeneralBlobRequest")
	flags.String("header-key", "X-Blob-Canary", "name of the canary header")
	flags.StringSlice("header-secret", nil, "accepted canary header value (repeatable)")
	flags.Int64("max-body-bytes", 32<<20, "largest accepted request body")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("log-format", "json", "log format: json|console")
	flags.Bool("cors", false, "enable permissive CORS")
	flags.Bool("metrics", true, "serve Prometheus metrics on /metrics")

	bindConfig(config.KeyServerHost, flags.Lookup("host"))
	bindConfig(config.KeyServerPort, flags.Lookup("port"))
	bindConfig(config.KeyStorageProvider, flags.Lookup("provider"))
	bindConfig(config.KeyConnectionString, flags.Lookup("connection-string"))
	bindConfig(config.KeyContainer, flags.Lookup("container"))
	bindConfig(config.KeyHeaderKey, flags.Lookup("header-key"))
	bindConfig(config.KeyHeaderSecrets, flags.Lookup("header-secret"))
	bindConfig(config.KeyMaxBodyBytes, flags.Lookup("max-body-bytes"))
	bindConfig(config.KeyLogLevel, flags.Lookup("log-level"))
	bindConfig(config.KeyLogFormat, flags.Lookup("log-format"))
	bindConfig(config.KeyCORSEnabled, flags.Lookup("cors"))
	bindConfig(config.KeyMetricsEnabled, flags.Lookup("metrics"))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	return cfg, nil
}

// newBlobCmd runs one operation through the same binder and dispatcher the
// HTTP endpoint uses, without the canary check.
func newBlobCmd(op api.Operation, use, short string) *cobra.Command {
	var requestType string
	maxArgs := 1
	if op == api.OpAdd {
		maxArgs = 2
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(1, maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := buildServices(cfg)
			if err != nil {
				return err
			}

			var body io.Reader
			if op == api.OpAdd {
				body = cmd.InOrStdin()
				if len(args) == 2 && args[1] != "-" {
					f, err := os.Open(args[1])
					if err != nil {
						return err
					}
					defer f.Close()
					body = f
				}
			}
			return runBlobOperation(cmd, svc, op, args[0], requestType, body)
		},
	}
	cmd.Flags().StringVar(&requestType, "trequest", api.DefaultRequestType, "request kind selecting the container")
	return cmd
}

func runBlobOperation(cmd *cobra.Command, svc *services, op api.Operation, path, requestType string, body io.Reader) error {
	binding, err := svc.binder.Bind(api.Query{
		Operation:   string(op),
		Path:        path,
		RequestType: requestType,
	})
	if err != nil {
		return err
	}
	result, _ := svc.dispatcher.Dispatch(cmd.Context(), binding, body)
	if result.Status != http.StatusOK {
		return errors.New(result.Message)
	}
	if len(result.Body) > 0 {
		if _, err := cmd.OutOrStdout().Write(result.Body); err != nil {
			return err
		}
		if op == api.OpExists {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
	return nil
}
