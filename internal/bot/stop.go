package bot

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	if b.cron != nil {
		b.cron.Stop()
	}
	b.tgService.StopReceivingUpdates()
}
