package display

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/tally/internal/models"
)

// sliceColors cycles across allocation slices.
var sliceColors = []string{"2563eb", "16a34a", "f59e0b", "dc2626", "7c3aed", "0891b2", "db2777", "65a30d"}

// AllocationChart renders the portfolio allocation as a PNG pie chart.
// Slices are labelled with type and formatted value.
func (f *Formatter) AllocationChart(p *models.PortfolioSnapshot) ([]byte, error) {
	values := make([]chart.Value, 0, len(p.Allocation))
	for i, a := range p.Allocation {
		if a.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", a.Type, f.Percent(a.Pct)),
			Value: a.Value,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(sliceColors[i%len(sliceColors)]),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no allocation to chart")
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Allocation %s (%s)", f.Date(p.AsOf), f.Money(p.TotalPrincipal)),
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
