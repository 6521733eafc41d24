package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/provider/scoresaber"
	"github.com/sstrack/sstrack/pkg/storage"
	"github.com/sstrack/sstrack/pkg/whttp"
)

// openDB opens the configured database, creating its directory if needed.
func openDB() (*storage.DB, string, error) {
	path, err := utils.GetAbsDBPath(viper.GetString("db_path"))
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database %s: %w", path, err)
	}
	return db, path, nil
}

func newHTTPClient(cmd *cobra.Command) (*retryablehttp.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	return whttp.NewClient(whttp.ClientConfig{
		Timeout:  viper.GetDuration("provider.timeout"),
		RetryMax: viper.GetInt("provider.retry_max"),
		Proxy:    proxy,
		Logger:   whttp.LogrusAdapter{Log: utils.Log},
	})
}

func newProvider(client *retryablehttp.Client) *scoresaber.Client {
	return scoresaber.New(scoresaber.Options{
		BaseURL:           viper.GetString("provider.base_url"),
		RequestsPerMinute: viper.GetInt("provider.requests_per_minute"),
		HTTPClient:        client,
	})
}

func newRenderer() notify.Renderer {
	highlights := map[string]int{}
	for name, color := range viper.GetStringMap("notify.highlights") {
		c, err := cast.ToIntE(color)
		if err != nil {
			utils.Log.Warnf("Ignoring highlight for %s: %v", name, err)
			continue
		}
		highlights[name] = c
	}
	return notify.Renderer{Color: viper.GetInt("notify.color"), Highlights: highlights}
}

// newNotifier builds the webhook sink, adding a console sink when asked to or
// when no webhook is configured at all.
func newNotifier(client *retryablehttp.Client, console bool) notify.Notifier {
	hook := &notify.DiscordWebhook{
		DefaultURL: viper.GetString("webhook_url"),
		URLs:       viper.GetStringMapString("webhooks"),
		Username:   viper.GetString("notify.username"),
		AvatarURL:  viper.GetString("notify.avatar_url"),
		Client:     client,
	}
	if hook.DefaultURL == "" && len(hook.URLs) == 0 {
		utils.Log.Warn("No webhook_url configured, printing messages to stdout")
		return &notify.Console{W: os.Stdout}
	}
	if console {
		return notify.Multi{hook, &notify.Console{W: os.Stdout}}
	}
	return hook
}
