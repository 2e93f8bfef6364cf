// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"inactivity_notifier/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID).Info("Processing /start command")
		return c.Send(startText(adminService, senderID, c.Sender().FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID).Info("Processing /help command")
		return c.Send(helpText(adminService, senderID), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func startText(adminService *app.AdminService, senderID int64, firstName string) string {
	if adminService.IsAdmin(senderID) {
		return fmt.Sprintf("Hi %s! I send inactivity reminders to Skill Up Academy students and report every run here. Use /help for the command list.", firstName)
	}
	return "Hi! This bot is for Skill Up Academy administrators only."
}

func helpText(adminService *app.AdminService, senderID int64) string {
	if !adminService.IsAdmin(senderID) {
		return "No commands are available for you."
	}
	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/check_inactivity`\n - Run the inactivity check now and show the report.\n\n")
	helpText.WriteString("`/status`\n - Show the next scheduled run and the last report.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
