package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ticketdash/internal/util"
)

const (
	ColCleanDate   = "clean_date"
	ColHour        = "Hour"
	ColCleanPrice  = "clean_price"
	ColCleanWeight = "clean_weight"
	ColMainProduct = "Main_Product"
	ColVehicleRef  = "Vehicle_Ref"
	ColClientRef   = "Client_Ref"
	ColDriverRef   = "Driver_Ref"
)

// DerivedColumns follow the raw columns in exports, in this order.
var DerivedColumns = []string{
	ColCleanDate, ColHour, ColCleanPrice, ColCleanWeight,
	ColMainProduct, ColVehicleRef, ColClientRef, ColDriverRef,
}

const summarySheet = "Summary"

// DisplayColumns are the raw columns shown in the ticket list.
func DisplayColumns(ds Dataset) []string {
	derived := derivedSet()
	out := make([]string, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		if strings.HasPrefix(col, "_") {
			continue
		}
		if _, ok := derived[col]; ok {
			continue
		}
		out = append(out, col)
	}
	return out
}

// ExportColumns are every column except system attributes.
func ExportColumns(ds Dataset) []string {
	return append(DisplayColumns(ds), DerivedColumns...)
}

// Cell returns the value of col for spreadsheet or JSON output.
func (r Row) Cell(col string) any {
	switch col {
	case ColCleanDate:
		return r.CleanDate
	case ColHour:
		return r.Hour
	case ColCleanPrice:
		return r.CleanPrice.InexactFloat64()
	case ColCleanWeight:
		return r.CleanWeight.InexactFloat64()
	case ColMainProduct:
		return r.MainProduct
	case ColVehicleRef:
		return r.VehicleRef
	case ColClientRef:
		return r.ClientRef
	case ColDriverRef:
		return r.DriverRef
	}

	v, ok := r.Record.Get(col)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string, bool, float64:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return util.ToText(t)
	}
}

func ReportFileName(day time.Time) string {
	return "Report_" + day.Format(DayLayout) + ".xlsx"
}

// WriteXLSX writes the rows and a summary sheet as a workbook.
func WriteXLSX(ds Dataset, summary Summary, w io.Writer) error {
	f, err := buildWorkbook(ds, summary)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func ExportToXLSX(ds Dataset, summary Summary, outputPath string) error {
	f, err := buildWorkbook(ds, summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func buildWorkbook(ds Dataset, summary Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := ExportColumns(ds)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range ds.Rows {
		r := i + 2
		for c, col := range headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			_ = f.SetCellValue(sheet, cell, row.Cell(col))
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(summarySheet, cell, value)
	}
	set(1, 1, "count")
	set(2, 1, summary.Count)
	set(1, 2, "total_price")
	set(2, 2, summary.TotalPrice.InexactFloat64())
	set(1, 3, "total_weight")
	set(2, 3, summary.TotalWeight.InexactFloat64())
	set(1, 5, "product")
	set(2, 5, "count")
	for i, p := range summary.TopProducts {
		set(1, 6+i, p.Product)
		set(2, 6+i, p.Count)
	}

	return f, nil
}

func derivedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(DerivedColumns))
	for _, col := range DerivedColumns {
		out[col] = struct{}{}
	}
	return out
}
