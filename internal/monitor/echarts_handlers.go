package monitor

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HandleDashboard renders a quick HTML dashboard of recent recognition
// attempts using go-echarts. This is a debugging-only endpoint (no auth):
// one scatter of confidence per attempt split by acceptance, plus a bar of
// candidate counts.
func (m *Monitor) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	attempts := m.Attempts()
	if len(attempts) == 0 {
		http.Error(w, "no recognition attempts recorded yet", http.StatusNotFound)
		return
	}

	acceptedData := make([]opts.ScatterData, 0, len(attempts))
	rejectedData := make([]opts.ScatterData, 0, len(attempts))
	candidateData := make([]opts.BarData, 0, len(attempts))
	labels := make([]string, 0, len(attempts))

	for i, a := range attempts {
		labels = append(labels, fmt.Sprintf("%d", i+1))
		candidateData = append(candidateData, opts.BarData{Value: a.Candidates})
		point := opts.ScatterData{Value: []interface{}{i + 1, a.Confidence}}
		if a.Accepted {
			acceptedData = append(acceptedData, point)
		} else {
			rejectedData = append(rejectedData, point)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Recognition confidence",
			Subtitle: fmt.Sprintf("acceptance rate %.0f%%", m.AcceptanceRate()*100),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "attempt"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score (lower is better)"}),
	)
	scatter.AddSeries("accepted", acceptedData)
	scatter.AddSeries("rejected", rejectedData)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Candidates per attempt"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("candidates", candidateData)

	page := components.NewPage()
	page.AddCharts(scatter, bar)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		http.Error(w, fmt.Sprintf("render dashboard: %v", err), http.StatusInternalServerError)
	}
}
