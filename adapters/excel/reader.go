package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"habitboard/internal/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const defaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *zap.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *zap.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger.Named("reader")}
}

// ReadData reads an Excel or CSV file into a Table
func (r *DataReader) ReadData() (*Table, error) {
	r.logger.Debug("reading file", zap.String("type", r.fileType), zap.String("path", r.filePath))

	info, err := os.Stat(r.filePath)
	if os.IsNotExist(err) {
		return nil, errors.DataMissing(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", r.filePath)
	}
	if info.Size() == 0 {
		return nil, errors.DataEmpty(fmt.Sprintf("%s file is empty: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads Sheet1, or the first sheet when Sheet1 does not exist
func (r *DataReader) readExcelData() (*Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := defaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	r.logger.Debug("sheet read",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(startTime)))

	return r.processRows(rows)
}

// readCSVData reads CSV data into a Table
func (r *DataReader) readCSVData() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	return r.ReadCSV(file)
}

// ReadCSV parses CSV from any reader. Short rows are tolerated; absent cells read as "".
func (r *DataReader) ReadCSV(src io.Reader) (*Table, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse CSV: %w", err))
	}
	r.logger.Debug("csv read", zap.Int("rows", len(rows)), zap.Duration("elapsed", time.Since(readStart)))

	return r.processRows(rows)
}

// processRows converts raw string rows into a Table
func (r *DataReader) processRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.DataEmpty(fmt.Sprintf("no header row in %s", r.filePath))
	}

	// Extract headers from first row
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	lines := make([]int, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
		lines = append(lines, i+2)
	}

	r.logger.Debug("file processed",
		zap.String("type", r.fileType),
		zap.Int("columns", len(headers)),
		zap.Int("rows", len(dataRows)))

	return &Table{
		Headers: headers,
		Rows:    dataRows,
		Lines:   lines,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
