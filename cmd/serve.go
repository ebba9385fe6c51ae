package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/KaramelBytes/mortstat/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve the analyses of one dataset as a JSON API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		opt, err := reportOptions(filepath.Base(args[0]))
		if err != nil {
			return err
		}
		addr := cfg.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		router := server.NewRouter(opt.Name, records, opt, log)
		return server.Run(ctx, addr, router, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
