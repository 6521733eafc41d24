package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/sstrack/sstrack/internal/server"
	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/command"
	"github.com/sstrack/sstrack/pkg/metrics"
	"github.com/sstrack/sstrack/pkg/tracking"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command daemon that accepts chat commands over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = viper.GetString("serve.listen")
		}

		db, path, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		lock, err := utils.AcquireDaemonLock(path)
		if err != nil {
			return err
		}
		defer lock.Release()

		client, err := newHTTPClient(cmd)
		if err != nil {
			return err
		}

		m := metrics.NewManager()
		prov := newProvider(client)
		sink := newNotifier(client, false)
		renderer := newRenderer()

		tr := tracking.New(tracking.Config{
			Provider: prov,
			Store:    db,
			Notifier: sink,
			Renderer: renderer,
			Metrics:  m,
			Log:      utils.Log,
		})

		srv := &server.Server{
			DB:      db,
			Tracker: tr,
			Dispatcher: &command.Dispatcher{
				Tracker:         tr,
				Provider:        prov,
				Store:           db,
				Notifier:        sink,
				Renderer:        renderer,
				DefaultInterval: viper.GetDuration("tracking.default_interval"),
				Log:             utils.Log,
			},
			Metrics:  m,
			Username: viper.GetString("serve.username"),
			Password: viper.GetString("serve.password"),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx, listenAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			utils.Log.Info("Stopping all tracking sessions...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return tr.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "HTTP listen address (default from serve.listen)")
}
