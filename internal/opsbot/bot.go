package opsbot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/ratelimit"

	"taxiads-backend/internal/auth"
	"taxiads-backend/internal/database/models"
	"taxiads-backend/internal/expiration"
	"taxiads-backend/internal/locales"
	"taxiads-backend/pkg/telegoapi"
)

// ExpirationRunner is the trigger surface the ops bot needs from the
// expiration scheduler.
type ExpirationRunner interface {
	RunImmediately(ctx context.Context) (expiration.Result, error)
}

// AdReviewer is the review surface the ops bot needs from the ad service.
type AdReviewer interface {
	Approve(ctx context.Context, adID primitive.ObjectID) (*models.Advertisement, error)
	Reject(ctx context.Context, adID primitive.ObjectID) (*models.Advertisement, error)
}

// Bot handles operator commands over Telegram: manual expiration runs and
// pending-ad review. All commands are admin-gated.
type Bot struct {
	bot          telegoapi.BotAPI
	updatesChan  <-chan telego.Update
	runner       ExpirationRunner
	reviewer     AdReviewer
	adminChecker auth.AdminCheckerInterface
	debug        bool
	ratelimiter  ratelimit.Limiter
}

// Deps holds the dependencies required by the ops Bot.
type Deps struct {
	Bot          telegoapi.BotAPI
	UpdatesChan  <-chan telego.Update
	Runner       ExpirationRunner
	Reviewer     AdReviewer
	AdminChecker auth.AdminCheckerInterface
	Debug        bool
}

// New creates a new ops Bot instance from its dependencies.
func New(deps Deps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("expiration runner cannot be nil")
	}
	if deps.Reviewer == nil {
		return nil, fmt.Errorf("ad reviewer cannot be nil")
	}
	if deps.AdminChecker == nil {
		return nil, fmt.Errorf("admin checker cannot be nil")
	}
	return &Bot{
		bot:          deps.Bot,
		updatesChan:  deps.UpdatesChan,
		runner:       deps.Runner,
		reviewer:     deps.Reviewer,
		adminChecker: deps.AdminChecker,
		debug:        deps.Debug,
		ratelimiter:  ratelimit.New(20),
	}, nil
}

// Start begins the update processing loop and blocks until the context is
// cancelled or the updates channel closes.
func (b *Bot) Start(ctx context.Context) {
	log.Println("Ops bot listening for updates...")

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			log.Println("Ops bot update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Ops bot updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// processUpdate routes one update. Panics in handlers are recovered so one
// bad command cannot take the loop down.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in ops bot processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := *update.Message
	if !strings.HasPrefix(message.Text, "/") {
		return
	}

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b.handleCommand(processingCtx, message)
}

func (b *Bot) handleCommand(ctx context.Context, message telego.Message) {
	parts := strings.Fields(message.Text)
	command := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]
	logPrefix := fmt.Sprintf("[OpsCmd:%s User:%d]", command, message.From.ID)
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	// Ops users are registered in the users collection under their
	// Telegram ID.
	isAdmin, err := b.adminChecker.IsAdmin(ctx, strconv.FormatInt(message.From.ID, 10))
	if err != nil {
		log.Printf("%s Admin check failed: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s admin check failed: %w", logPrefix, err))
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsErrorGeneral", nil, nil))
		return
	}
	if !isAdmin {
		log.Printf("%s Denied: not an admin", logPrefix)
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsRequiresAdmin", nil, nil))
		return
	}

	switch command {
	case "expire":
		b.handleExpire(ctx, message, localizer, logPrefix)
	case "approve":
		b.handleReview(ctx, message, localizer, logPrefix, args, b.reviewer.Approve, "MsgOpsAdApproved")
	case "reject":
		b.handleReview(ctx, message, localizer, logPrefix, args, b.reviewer.Reject, "MsgOpsAdRejected")
	default:
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsUnknownCommand", nil, nil))
	}
}

// handleExpire runs the expiration pipeline immediately, bypassing the
// cooldown, and reports how many ads were converted. Zero is a valid,
// unremarkable outcome.
func (b *Bot) handleExpire(ctx context.Context, message telego.Message, localizer *i18n.Localizer, logPrefix string) {
	result, err := b.runner.RunImmediately(ctx)
	if err != nil {
		log.Printf("%s Manual expiration run failed: %v", logPrefix, err)
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsExpireFailed", map[string]interface{}{
			"Skipped": result.SkippedCount,
		}, nil))
		return
	}
	count := result.ProcessedCount
	b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsExpireDone", map[string]interface{}{
		"Count": count,
	}, &count))
}

func (b *Bot) handleReview(
	ctx context.Context,
	message telego.Message,
	localizer *i18n.Localizer,
	logPrefix string,
	args []string,
	action func(context.Context, primitive.ObjectID) (*models.Advertisement, error),
	successMsgID string,
) {
	if len(args) != 1 {
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsBadAdID", nil, nil))
		return
	}
	adID, err := primitive.ObjectIDFromHex(args[0])
	if err != nil {
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsBadAdID", nil, nil))
		return
	}

	ad, err := action(ctx, adID)
	if err != nil {
		log.Printf("%s Review action failed for ad %s: %v", logPrefix, adID.Hex(), err)
		b.reply(ctx, message, locales.GetMessage(localizer, "MsgOpsErrorGeneral", nil, nil))
		return
	}
	b.reply(ctx, message, locales.GetMessage(localizer, successMsgID, map[string]interface{}{
		"Title": ad.Title,
	}, nil))
}

func (b *Bot) reply(ctx context.Context, message telego.Message, text string) {
	if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), text)); err != nil {
		log.Printf("[OpsBot Chat:%d] Failed to send reply: %v", message.Chat.ID, err)
	}
}
