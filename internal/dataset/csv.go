package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantlab/internal/series"
)

const (
	dateColumn  = "date"
	closeColumn = "close"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// LoadCSV 从包含 date 与 close 两列的CSV文件加载价格序列，列顺序不限。
// 缺列、日期或价格非法都会在任何信号计算开始前报 series.ErrInvalidInput。
func LoadCSV(path string) (*series.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开CSV文件失败: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: 读取CSV表头失败: %v", series.ErrInvalidInput, err)
	}

	dateIdx, closeIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case dateColumn:
			dateIdx = i
		case closeColumn:
			closeIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: CSV缺少 %q 列", series.ErrInvalidInput, dateColumn)
	}
	if closeIdx < 0 {
		return nil, fmt.Errorf("%w: CSV缺少 %q 列", series.ErrInvalidInput, closeColumn)
	}

	type row struct {
		ts    time.Time
		price float64
	}
	var rows []row

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: 读取CSV第%d行失败: %v", series.ErrInvalidInput, line, err)
		}

		ts, err := parseDate(strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: 第%d行日期解析失败: %v", series.ErrInvalidInput, line, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: 第%d行价格解析失败: %v", series.ErrInvalidInput, line, err)
		}
		rows = append(rows, row{ts: ts, price: price})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	prices := &series.PriceSeries{
		Timestamps: make([]time.Time, len(rows)),
		Prices:     make([]float64, len(rows)),
	}
	for i, r := range rows {
		prices.Timestamps[i] = r.ts
		prices.Prices[i] = r.price
	}

	if err := prices.Validate(); err != nil {
		return nil, err
	}
	return prices, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法识别的日期 %q", value)
}
