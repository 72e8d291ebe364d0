package reporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/rating"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the generated workbook
const (
	SheetSamples  = "Samples"
	SheetAverages = "Averages"
)

const defaultSheet = "Sheet1"

var samplesHeader = []string{"Site", "Device", "Score", "FCP, s", "LCP, s", "SI, s", "TBT, ms", "CLS", "TTFB, s", "INP, ms"}
var averagesHeader = append(append([]string{}, samplesHeader...), "Samples")

type excelReporter struct {
	path string
}

// NewExcelReporter creates a reporter that writes every run into an xlsx workbook, overwriting the previous one
func NewExcelReporter(path string) (*excelReporter, error) {
	if len(path) == 0 {
		return nil, errors.New("empty excel file path")
	}

	return &excelReporter{
		path: path,
	}, nil
}

// Report writes the raw samples and the averaged records, the averaged cells being filled by their rating
func (r *excelReporter) Report(_ context.Context, report *common.RunReport) error {
	if report == nil {
		return errors.New("nil run report")
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	err := f.SetSheetName(defaultSheet, SheetSamples)
	if err != nil {
		return err
	}
	_, err = f.NewSheet(SheetAverages)
	if err != nil {
		return err
	}

	err = writeRow(f, SheetSamples, 1, toInterfaces(samplesHeader))
	if err != nil {
		return err
	}
	for i, sample := range report.Raw {
		row := workItemCells(sample.WorkItem)
		row = append(row, metricCells(sample.Record.NamedValues())...)
		err = writeRow(f, SheetSamples, i+2, row)
		if err != nil {
			return err
		}
	}

	err = writeRow(f, SheetAverages, 1, toInterfaces(averagesHeader))
	if err != nil {
		return err
	}

	styles := newStyleCache(f)
	for i, avg := range report.Averaged {
		values := avg.Record.NamedValues()
		row := workItemCells(avg.WorkItem)
		row = append(row, metricCells(values)...)
		row = append(row, avg.NumSamples)
		err = writeRow(f, SheetAverages, i+2, row)
		if err != nil {
			return err
		}

		err = fillRatings(f, styles, i+2, values)
		if err != nil {
			return err
		}
	}

	err = os.MkdirAll(filepath.Dir(r.path), os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	err = f.SaveAs(r.path)
	if err != nil {
		return fmt.Errorf("failed to save excel report: %w", err)
	}

	log.Debug("excel report written", "path", r.path, "samples", len(report.Raw), "averaged", len(report.Averaged))

	return nil
}

func workItemCells(item common.WorkItem) []interface{} {
	return []interface{}{item.Site, string(item.Device)}
}

func metricCells(values []common.NamedValue) []interface{} {
	cells := make([]interface{}, 0, len(values))
	for _, v := range values {
		if v.Value == nil {
			cells = append(cells, nil)
			continue
		}

		cells = append(cells, *v.Value)
	}

	return cells
}

func toInterfaces(values []string) []interface{} {
	result := make([]interface{}, 0, len(values))
	for _, v := range values {
		result = append(result, v)
	}

	return result
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if v == nil {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}

		err = f.SetCellValue(sheet, cell, v)
		if err != nil {
			return err
		}
	}

	return nil
}

// metric values start on the third column, after site and device
const firstMetricColumn = 3

func fillRatings(f *excelize.File, styles *styleCache, row int, values []common.NamedValue) error {
	for i, v := range values {
		if v.Value == nil {
			continue
		}

		styleID, err := styles.get(rating.Classify(v.Name, *v.Value))
		if err != nil {
			return err
		}
		if styleID == 0 {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(firstMetricColumn+i, row)
		if err != nil {
			return err
		}

		err = f.SetCellStyle(SheetAverages, cell, cell, styleID)
		if err != nil {
			return err
		}
	}

	return nil
}

type styleCache struct {
	file   *excelize.File
	styles map[rating.Rating]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{
		file:   f,
		styles: make(map[rating.Rating]int),
	}
}

func (sc *styleCache) get(r rating.Rating) (int, error) {
	color := r.Color()
	if len(color) == 0 {
		return 0, nil
	}

	id, ok := sc.styles[r]
	if ok {
		return id, nil
	}

	id, err := sc.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	})
	if err != nil {
		return 0, err
	}

	sc.styles[r] = id

	return id, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *excelReporter) IsInterfaceNil() bool {
	return r == nil
}
