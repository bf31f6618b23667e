package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"

	"taxiads-backend/internal/expiration"
	"taxiads-backend/internal/locales"
	"taxiads-backend/pkg/telegoapi"
	"taxiads-backend/pkg/utils"
)

// TelegramNotifier reports expiration runs to an operator chat.
type TelegramNotifier struct {
	bot     telegoapi.BotAPI
	chatID  int64
	limiter ratelimit.Limiter
}

// NewTelegramNotifier creates a new operator notifier.
// It requires a non-nil bot instance and a non-zero chat ID.
func NewTelegramNotifier(bot telegoapi.BotAPI, chatID int64) (*TelegramNotifier, error) {
	if bot == nil {
		return nil, fmt.Errorf("bot instance cannot be nil")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("operator chat ID cannot be zero")
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		// Telegram allows ~1 msg/s per chat; reports are sparse but a
		// burst of manual runs should not hit the API limit.
		limiter: ratelimit.New(1),
	}, nil
}

// NotifyDowngradeRun sends a localized report of a downgrade run to the
// operator chat. Delivery failures are logged and reported, never returned:
// notification must not fail the pipeline.
func (n *TelegramNotifier) NotifyDowngradeRun(ctx context.Context, result expiration.Result) {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	count := result.ProcessedCount
	var b strings.Builder
	b.WriteString(locales.GetMessage(localizer, "MsgDowngradeRunHeader", map[string]interface{}{
		"Count": count,
	}, &count))
	for _, ad := range result.DowngradedAds {
		b.WriteString("\n")
		b.WriteString(locales.GetMessage(localizer, "MsgDowngradeRunLine", map[string]interface{}{
			"Title":       ad.Title,
			"OriginalTag": ad.OriginalTag,
			"ExpiredAt":   ad.ExpiryDate.Format("2006-01-02"),
		}, nil))
	}
	if result.SkippedCount > 0 {
		b.WriteString("\n")
		b.WriteString(locales.GetMessage(localizer, "MsgDowngradeRunSkipped", map[string]interface{}{
			"Count": result.SkippedCount,
		}, nil))
	}

	n.limiter.Take()
	params := tu.Message(tu.ID(n.chatID), utils.EscapeMarkdownV2(b.String()))
	params.ParseMode = telego.ModeMarkdownV2
	if _, err := n.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[TelegramNotifier Chat:%d] Failed to send downgrade report: %v", n.chatID, err)
		sentry.CaptureException(err)
	}
}

// NoopNotifier discards reports. Used when no operator bot is configured.
type NoopNotifier struct{}

// NotifyDowngradeRun implements expiration.Notifier as a no-op.
func (NoopNotifier) NotifyDowngradeRun(context.Context, expiration.Result) {}
