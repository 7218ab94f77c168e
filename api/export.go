package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"tripbudget/middleware"
	"tripbudget/models"
	"tripbudget/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	log *service.ExpenseLog
}

// NewExportHandler 创建导出处理器
func NewExportHandler(log *service.ExpenseLog) *ExportHandler {
	return &ExportHandler{log: log}
}

var exportHeaders = []string{"序号", "时间", "标题", "类别", "金额", "付款人", "参与成员", "备注"}

// exportRow 一行导出数据
func exportRow(e *models.Expense, profiles map[uint]models.Profile) []string {
	participants := make([]string, 0, len(e.Shares))
	for _, s := range e.Shares {
		flag := ""
		if s.Settled {
			flag = "✓"
		}
		participants = append(participants, fmt.Sprintf("%s:%s%s", memberName(profiles, s.MemberID), s.Amount.StringFixed(2), flag))
	}
	return []string{
		fmt.Sprintf("%d", e.Seq),
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.Title,
		e.Category,
		e.Amount.StringFixed(2),
		memberName(profiles, e.PaidBy),
		strings.Join(participants, "; "),
		e.Notes,
	}
}

func memberName(profiles map[uint]models.Profile, id uint) string {
	if name := profiles[id].DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func (h *ExportHandler) snapshot(c *gin.Context) (uint, *service.LedgerSnapshot, bool) {
	itineraryID, ok := itineraryIDParam(c)
	if !ok {
		return 0, nil, false
	}
	snap, err := h.log.Snapshot(c.Request.Context(), itineraryID, middleware.GetCurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return 0, nil, false
	}
	return itineraryID, snap, true
}

// ExportCSV 导出账本为 CSV
// @Summary 导出账本
// @Description 按记录顺序导出完整账本（含结算记录）为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Success 200 {file} file "CSV 文件"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	itineraryID, snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for i := range snap.Expenses {
		if err := writer.Write(exportRow(&snap.Expenses[i], snap.Profiles)); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("itinerary_%d_ledger.csv", itineraryID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出账本为 Excel
// @Summary 导出账本为 Excel
// @Description 导出账本明细与类别汇总两个工作表
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "行程ID"
// @Success 200 {file} file "Excel 文件"
// @Failure 403 {object} Response "无权限"
// @Failure 404 {object} Response "行程不存在"
// @Router /api/v1/itineraries/{id}/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	itineraryID, snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	f, err := buildLedgerWorkbook(snap)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("itinerary_%d_ledger.xlsx", itineraryID)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
	}
}

func cellBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
}

// buildLedgerWorkbook 账本明细 + 类别汇总
func buildLedgerWorkbook(snap *service.LedgerSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	ledgerSheet := "账本"
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder(),
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    cellBorder(),
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    cellBorder(),
	})

	widths := []float64{8, 20, 24, 14, 12, 16, 40, 30}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(ledgerSheet, col, col, w)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ledgerSheet, cell, header)
		_ = f.SetCellStyle(ledgerSheet, cell, cell, headerStyle)
	}

	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		row := i + 2
		for col, value := range exportRow(e, snap.Profiles) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if col == 4 {
				_ = f.SetCellValue(ledgerSheet, cell, e.Amount.InexactFloat64())
				continue
			}
			_ = f.SetCellValue(ledgerSheet, cell, value)
		}
		_ = f.SetCellStyle(ledgerSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), dataStyle)
	}

	summaryRow := len(snap.Expenses) + 2
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", summaryRow), "已花费")
	_ = f.MergeCell(ledgerSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("D%d", summaryRow))
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", summaryRow), snap.Budget.Spent.InexactFloat64())
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("预算 %s %s，共 %d 条记录",
		snap.Budget.Total.StringFixed(2), snap.Budget.Currency, len(snap.Expenses)))
	_ = f.MergeCell(ledgerSheet, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("H%d", summaryRow))
	_ = f.SetCellStyle(ledgerSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	categorySheet := "类别汇总"
	if _, err := f.NewSheet(categorySheet); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetColWidth(categorySheet, "A", "C", 16)
	for i, header := range []string{"类别", "金额", "占比(%)"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(categorySheet, cell, header)
		_ = f.SetCellStyle(categorySheet, cell, cell, headerStyle)
	}
	for i, total := range service.CategoryTotals(&snap.Budget) {
		row := i + 2
		_ = f.SetCellValue(categorySheet, fmt.Sprintf("A%d", row), total.Category)
		_ = f.SetCellValue(categorySheet, fmt.Sprintf("B%d", row), total.Total.InexactFloat64())
		_ = f.SetCellValue(categorySheet, fmt.Sprintf("C%d", row), total.Percentage.InexactFloat64())
		_ = f.SetCellStyle(categorySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), dataStyle)
	}

	return f, nil
}
