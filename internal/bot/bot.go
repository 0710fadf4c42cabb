package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
)

type Bot struct {
	service    *app.Service
	api        *tgbotapi.BotAPI
	admins     map[int64]bool
	defaultTop int
}

func New(service *app.Service) (*Bot, error) {
	config := service.Config
	if config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not configured, set bot.token or AOJ_BOT_TOKEN")
	}

	api, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	admins := make(map[int64]bool)
	for _, id := range config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		service:    service,
		api:        api,
		admins:     admins,
		defaultTop: config.Bot.DefaultTop,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}
