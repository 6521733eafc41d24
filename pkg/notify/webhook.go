package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/sjson"

	"github.com/sstrack/sstrack/pkg/whttp"
)

// DiscordWebhook posts messages to Discord execute-webhook URLs. Each context
// may have its own URL; DefaultURL is used for the rest. Username and
// AvatarURL override the webhook's configured identity when set.
type DiscordWebhook struct {
	DefaultURL string
	URLs       map[string]string
	Username   string
	AvatarURL  string
	Client     *retryablehttp.Client
}

func (w *DiscordWebhook) url(contextID string) string {
	if u, ok := w.URLs[contextID]; ok && u != "" {
		return u
	}
	return w.DefaultURL
}

func (w *DiscordWebhook) Deliver(ctx context.Context, contextID string, msg Message) error {
	target := w.url(contextID)
	if target == "" {
		return fmt.Errorf("%w: no webhook configured for %q", ErrDelivery, contextID)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encoding message: %v", ErrDelivery, err)
	}
	if w.Username != "" {
		if body, err = sjson.SetBytes(body, "username", w.Username); err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
	}
	if w.AvatarURL != "" {
		if body, err = sjson.SetBytes(body, "avatar_url", w.AvatarURL); err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: http.MethodPost,
		URL:    target,
		Body:   body,
	}, w.Client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if !res.OK() {
		return fmt.Errorf("%w: webhook returned %d %s", ErrDelivery, res.StatusCode, res.HTTPTitle)
	}
	return nil
}
