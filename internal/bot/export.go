package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// exportWeek выгружает записи ближайшей недели в Excel и отправляет
// файл админу.
func (b *Bot) exportWeek(ctx context.Context, chatID int64) {
	now := time.Now().In(b.config.Timezone())
	from := now.Format("2006-01-02")
	to := now.AddDate(0, 0, 6).Format("2006-01-02")

	filePath, err := b.exportToExcel(ctx, from, to)
	if err != nil {
		b.logger.Error().Err(err).Msg("export error")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("Записи с %s по %s", formatDateDMY(from), formatDateDMY(to))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("send export error")
		b.sendMessage(chatID, "Файл создан, но отправить его не удалось.")
	}
}

// exportToExcel создает Excel файл с записями за период
func (b *Bot) exportToExcel(ctx context.Context, fromDate, toDate string) (string, error) {
	exportPath := b.config.Exports.Path
	if exportPath == "" {
		exportPath = os.TempDir()
	}
	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := b.bookingService.BookingsByDateRange(ctx, fromDate, toDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Записи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		formatDateDMY(fromDate), formatDateDMY(toDate)))
	_ = f.MergeCell(sheetName, "A1", "E1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"Дата", "День", "Время", "Клиент", "Username"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), formatDateDMY(booking.Date))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), weekdayRu(booking.Date))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.Time)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), booking.FullName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), booking.Username)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 8)
	_ = f.SetColWidth(sheetName, "C", "C", 10)
	_ = f.SetColWidth(sheetName, "D", "E", 25)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx", fromDate, toDate)
	filePath := filepath.Join(exportPath, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}
