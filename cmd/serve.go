package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the lead service over HTTP. Generation is enabled when the provider
key is configured, campaign sending when smtp.host is set and verification
when jina.key is set; otherwise their routes answer 503.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		deps := api.Deps{
			Leads:          env.Leads,
			From:           senderProfile(),
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		}
		if cfg.Validate("generate") == nil {
			p, err := initPipeline(ctx, env.Store)
			if err != nil {
				return eris.Wrap(err, "serve: init provider")
			}
			deps.Generator = p
		} else {
			zap.L().Warn("serve: provider not configured, generation disabled")
		}
		if cfg.Validate("campaign") == nil {
			deps.Sender = initSender()
		} else {
			zap.L().Warn("serve: smtp not configured, campaign sending disabled")
		}

		if cfg.Validate("verify") == nil {
			deps.Verifier = initVerifier()
		} else {
			zap.L().Warn("serve: jina not configured, verification disabled")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.NewRouter(deps),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
