package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"absensi_backend/internals/features/attendance/model"
	"absensi_backend/internals/features/attendance/status"
)

const sheetName = "Asistencia"

// Warna sel (hijau = hadir, merah = alpa, kuning = izin)
const (
	fillPresent = "D1FAE5"
	fillAbsent  = "FEE2E2"
	fillExcused = "FEF3C7"
	fillHeader  = "E5E7EB"
)

type excelStyles struct {
	header, present, absent, excused, title int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill(fillHeader), Alignment: center}); err != nil {
		return s, err
	}
	if s.present, err = f.NewStyle(&excelize.Style{Fill: fill(fillPresent), Alignment: center}); err != nil {
		return s, err
	}
	if s.absent, err = f.NewStyle(&excelize.Style{Fill: fill(fillAbsent), Alignment: center}); err != nil {
		return s, err
	}
	if s.excused, err = f.NewStyle(&excelize.Style{Fill: fill(fillExcused), Alignment: center}); err != nil {
		return s, err
	}
	return s, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// CellText: isi sel Excel per status. Excuse = label kategori + detail.
func CellText(ds status.DayStatus) string {
	switch ds.Kind {
	case status.Present:
		return ds.Cell()
	case status.Excused:
		if d := strings.TrimSpace(ds.Detail); d != "" {
			return ds.Label + ": " + d
		}
		return ds.Label
	}
	return "FALTÓ"
}

// sheetWriter: simpan error pertama excelize, sisa panggilan jadi no-op.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) value(ref string, v any) {
	if w.err == nil {
		w.err = w.f.SetCellValue(sheetName, ref, v)
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(sheetName, from, to, id)
	}
}

func (w *sheetWriter) merge(from, to string) {
	if w.err == nil {
		w.err = w.f.MergeCell(sheetName, from, to)
	}
}

func (w *sheetWriter) width(col string, v float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(sheetName, col, col, v)
	}
}

// RenderExcel: matriks → .xlsx (bytes).
func RenderExcel(m *Matrix) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	st, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f}

	fixed := []string{"N°", "DNI", "Apellidos y nombres", "Condición"}
	firstDayCol := len(fixed) + 1
	totalCol := firstDayCol + len(m.Days)
	lastCol := totalCol + 2

	// judul + legend
	w.value("A1", m.Title)
	w.merge("A1", cellName(lastCol, 1))
	w.style("A1", "A1", st.title)
	legend := ""
	for i, l := range m.Legend {
		if i > 0 {
			legend += " · "
		}
		legend += fmt.Sprintf("%s = %s", l.Code, l.Label)
	}
	w.value("A2", legend)
	w.merge("A2", cellName(lastCol, 2))

	// header
	const headerRow = 4
	for i, h := range fixed {
		w.value(cellName(i+1, headerRow), h)
	}
	for i, d := range m.Days {
		w.value(cellName(firstDayCol+i, headerRow), d.Format("02/01"))
	}
	for i, h := range []string{"Asistió", "Justificado", "Faltó"} {
		w.value(cellName(totalCol+i, headerRow), h)
	}
	w.style(cellName(1, headerRow), cellName(lastCol, headerRow), st.header)

	// baris orang
	row := headerRow + 1
	for i, r := range m.Rows {
		w.value(cellName(1, row), i+1)
		w.value(cellName(2, row), r.Person.PersonNationalID)
		w.value(cellName(3, row), r.Person.DisplayName())
		w.value(cellName(4, row), string(r.Person.PersonCategory))
		for j, c := range r.Cells {
			ref := cellName(firstDayCol+j, row)
			w.value(ref, CellText(c))
			style := st.absent
			switch c.Kind {
			case status.Present:
				style = st.present
			case status.Excused:
				style = st.excused
			}
			w.style(ref, ref, style)
		}
		w.value(cellName(totalCol, row), r.Totals.Present)
		w.value(cellName(totalCol+1, row), r.Totals.Excused)
		w.value(cellName(totalCol+2, row), r.Totals.Absent)
		row++
	}

	// total per hari
	row++
	for i, label := range []string{"Asistieron", "Justificados", "Faltaron"} {
		w.value(cellName(3, row+i), label)
		w.style(cellName(3, row+i), cellName(3, row+i), st.header)
	}
	for j, t := range m.DayTotals {
		w.value(cellName(firstDayCol+j, row), t.Present)
		w.value(cellName(firstDayCol+j, row+1), t.Excused)
		w.value(cellName(firstDayCol+j, row+2), t.Absent)
	}
	row += 4

	// total per kategori
	for _, c := range model.PersonCategories {
		t := m.CategoryTotals[c]
		w.value(cellName(3, row), string(c))
		w.value(cellName(totalCol, row), t.Present)
		w.value(cellName(totalCol+1, row), t.Excused)
		w.value(cellName(totalCol+2, row), t.Absent)
		row++
	}

	w.width("A", 5)
	w.width("B", 11)
	w.width("C", 36)
	w.width("D", 13)

	if w.err != nil {
		return nil, fmt.Errorf("render excel: %w", w.err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// ExcelFilename: nama file unduhan.
func ExcelFilename(m *Matrix) string {
	if m.From.Equal(m.To) {
		return fmt.Sprintf("asistencia_%s.xlsx", m.From.Format("2006-01-02"))
	}
	return fmt.Sprintf("asistencia_%s_%s.xlsx", m.From.Format("2006-01-02"), m.To.Format("2006-01-02"))
}
