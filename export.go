package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/ledger"
	"github.com/AprendendoLinux/financeiro/pkg/money"
)

// exportXLSXHandler streams the selected month's ledger as a spreadsheet.
func exportXLSXHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		year, month := monthYearQuery(c)

		entries, err := svc.MonthEntries(userID, year, month)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		var cats []models.Category
		if err := db.Where("user_id = ?", userID).Find(&cats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		catNames := make(map[uint]string, len(cats))
		for i := range cats {
			catNames[cats[i].ID] = cats[i].Name
		}

		f := excelize.NewFile()
		sheetName := fmt.Sprintf("%04d-%02d", year, int(month))
		index, err := f.NewSheet(sheetName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		headers := []string{"Date", "Description", "Category", "Type", "Amount"}
		for i, h := range headers {
			cell := fmt.Sprintf("%c1", 'A'+i)
			f.SetCellValue(sheetName, cell, h)
		}

		for idx := range entries {
			e := &entries[idx]
			row := idx + 2

			category := ""
			if e.CategoryID != nil {
				category = catNames[*e.CategoryID]
			}

			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Description)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), category)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Type)
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), money.FormatCents(e.Amount))
		}

		f.SetColWidth(sheetName, "A", "A", 12)
		f.SetColWidth(sheetName, "B", "B", 30)
		f.SetColWidth(sheetName, "C", "C", 15)
		f.SetColWidth(sheetName, "D", "D", 14)
		f.SetColWidth(sheetName, "E", "E", 12)

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%04d%02d_%s.xlsx\"",
			year, int(month), time.Now().Format("20060102")))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		}
	}
}
