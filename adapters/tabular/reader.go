// Package tabular reads delimited data files into the dataset model.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"healthsim/domain/dataset"
)

// Reader handles reading CSV and Excel files
type Reader struct {
	filePath string
	fileType string // "csv" or "xlsx"
	logger   *zap.Logger
}

// NewReader creates a reader that dispatches on the file extension
func NewReader(filePath string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &Reader{filePath: filePath, fileType: fileType, logger: logger}
}

// Read loads the file into a dataset table
func (r *Reader) Read() (*dataset.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	case "xlsx":
		rows, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	table := dataset.New(r.filePath, rows[0], rows[1:])
	r.logger.Info("dataset loaded",
		zap.String("file", r.filePath),
		zap.String("type", r.fileType),
		zap.Int("columns", table.NumCols()),
		zap.Int("rows", table.NumRows()),
		zap.String("fingerprint", table.Fingerprint.Short()),
		zap.Duration("elapsed", time.Since(start)))

	return table, nil
}

// readCSV reads all rows from a CSV file
func (r *Reader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, Table pads them
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// readExcel reads all rows from Sheet1 of an xlsx file
func (r *Reader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}
