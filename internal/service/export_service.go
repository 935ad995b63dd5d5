package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"openmind/internal/model"
	"openmind/pkg/log"
)

// ErrNothingToExport 没有可导出的行（全部被遮蔽或列表为空）时拒绝导出。
var ErrNothingToExport = errors.New("nothing to export")

// exportSheetName 工作表名（韩语"意见目录"）。
const exportSheetName = "의견목록"

// exportColumns 导出列头。列顺序是对外约定，不要调整。
var exportColumns = []string{
	"No",     // 序号
	"업무주관부서", // 业务主管部门
	"안건구분",   // 安件分类
	"안건상세",   // 安件标题
	"안건요청부서", // 提交部门
	"상세내용",   // 改进方案正文
	"답변",     // 处理意见
	"등록일",    // 登记日
	"상태",     // 状态
	"작성자",    // 提交人
	"계열사",    // 系列社
}

// exportColumnWidths 各列宽度，与列头一一对应。
var exportColumnWidths = []float64{6, 18, 14, 30, 18, 50, 40, 14, 10, 12, 14}

// ExportService 把意见列表导出为 xlsx 工作簿。
type ExportService interface {
	// ExportOpinions 生成工作簿字节流和下载文件名。
	// 被遮蔽的意见整行排除；没有可导出行时返回 ErrNothingToExport。
	ExportOpinions(records []model.OpinionRecord) (data []byte, filename string, err error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

func (s *exportService) ExportOpinions(records []model.OpinionRecord) ([]byte, string, error) {
	rows := make([]model.OpinionRecord, 0, len(records))
	for _, rec := range records {
		if IsBlinded(rec.NegativeScore) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, "", ErrNothingToExport
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("ExportOpinions: failed to close workbook: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}
	for i, width := range exportColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheetName, col, col, width); err != nil {
			return nil, "", fmt.Errorf("set column width: %w", err)
		}
	}

	for i, rec := range rows {
		regDate := rec.RegDate
		if t, ok := rec.ParseRegDate(); ok {
			regDate = t.Format("2006-01-02")
		}
		row := []interface{}{
			i + 1,
			rec.ProdDept,
			rec.Category,
			rec.Title,
			rec.Dept,
			rec.Tobe,
			rec.ProcDesc,
			regDate,
			model.StatusLabel(rec.Status),
			rec.Name,
			rec.Company,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("serialize workbook: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.xlsx", exportSheetName, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
