package handlers

import (
	"fmt"
	"net/http"
	"time"

	"casebook/internal/models"
	"casebook/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Платежи"
	xlsxMime    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"ID", "Дата", "Тип", "Сумма", "Оплачен", "Дата оплаты",
	"Клиент", "Дело", "Вид дохода", "Счёт", "Описание", "Примечание",
}

// Export выгружает платежи в xlsx с теми же фильтрами и сортировкой, что и список, без пагинации.
func (h *PaymentHandler) Export(c *gin.Context) {
	p, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context()).
		Preload("Client").
		Preload("ClientCase").
		Preload("IncomeType")
	payments, err := query.All[models.Payment](db, query.Payments, p)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := paymentsWorkbook(payments)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("payments_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", xlsxMime)
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(fmt.Errorf("write xlsx: %w", err))
	}
}

func paymentsWorkbook(payments []models.Payment) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, p := range payments {
		row := []any{
			p.ID,
			p.Date.Format("02.01.2006"),
			string(p.Type),
			p.Amount.InexactFloat64(),
			p.IsPaid,
			formatDate(p.PaidDate),
			"", "", "",
			deref(p.Account),
			deref(p.Description),
			deref(p.Notes),
		}
		if p.Client != nil {
			row[6] = p.Client.Name
		}
		if p.ClientCase != nil {
			row[7] = p.ClientCase.Title
		}
		if p.IncomeType != nil {
			row[8] = p.IncomeType.Name
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
