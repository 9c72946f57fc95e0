package report

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"quantlab/internal/backtest"
)

// Entry 为对比报告中的一行：一个策略的绩效汇总。
type Entry struct {
	Strategy       string
	InitialCapital float64
	FinalEquity    float64
	Metrics        backtest.Metrics
}

// Render 生成多策略对比表文本。
func Render(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("策略绩效对比\n")

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "strategy\tfinal_equity\ttotal_return\tannualized_return\tsharpe_ratio\tmax_drawdown")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%s\n",
			e.Strategy,
			e.FinalEquity,
			formatPercent(e.Metrics.TotalReturn),
			formatPercent(e.Metrics.AnnualizedReturn),
			formatRatio(e.Metrics.SharpeRatio),
			formatPercent(e.Metrics.MaxDrawdown),
		)
	}
	_ = w.Flush()

	return sb.String()
}

// 零方差等退化情形的 NaN 哨兵值统一展示为 n/a。
func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatRatio(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
