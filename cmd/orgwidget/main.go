package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alfredjeanlab/orgwidget/internal/client"
	"github.com/alfredjeanlab/orgwidget/internal/config"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	serverAddr string
	transport  string
	token      string
	envFile    string
	jsonOutput bool
	verbose    bool
	noColor    bool

	widgetCfg  *config.Widget
	logger     *slog.Logger
	storefront client.StorefrontClient
	admin      *client.HTTPClient
)

var rootCmd = &cobra.Command{
	Use:           "orgwidget <command>",
	Short:         "Storefront organization widget and service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, slog.LevelWarn); err != nil {
			return err
		}
		return connect()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storefront != nil {
			storefront.Close()
		}
	},
}

// setup loads the .env file, configures logging and reads the widget
// configuration with command-line flags applied on top.
func setup(cmd *cobra.Command, level slog.Level) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadWidget()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("http-url") {
		cfg.HTTPURL = httpURL
	}
	if flags.Changed("server") {
		cfg.Server = serverAddr
	}
	if flags.Changed("transport") {
		cfg.Transport = transport
	}
	if flags.Changed("token") {
		cfg.Token = token
	}
	widgetCfg = cfg
	return nil
}

// connect creates the storefront client for the configured transport and
// the HTTP admin client.
func connect() error {
	admin = client.NewHTTPClient(widgetCfg.HTTPURL, widgetCfg.Token)
	switch widgetCfg.Transport {
	case config.TransportHTTP:
		storefront = admin
	case config.TransportGRPC:
		c, err := client.NewGRPCClient(widgetCfg.Server, widgetCfg.Token)
		if err != nil {
			return fmt.Errorf("failed to connect to server: %w", err)
		}
		storefront = c
	default:
		return fmt.Errorf("unknown transport %q (must be http or grpc)", widgetCfg.Transport)
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&httpURL, "http-url", "", "HTTP server URL (default $ORGWIDGET_HTTP_URL or http://localhost:8080)")
	pf.StringVar(&serverAddr, "server", "", "gRPC server address (default $ORGWIDGET_SERVER or localhost:9090)")
	pf.StringVar(&transport, "transport", "", "transport protocol, http or grpc (default $ORGWIDGET_TRANSPORT or http)")
	pf.StringVar(&token, "token", "", "bearer token (default $ORGWIDGET_TOKEN)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file to load; missing files are ignored")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "widget", Title: "Widget:"},
		&cobra.Group{ID: "directory", Title: "Directory:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Widget
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(sessionCmd)

	// Directory
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(costCenterCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(exportCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
