package visualization

import (
	"fmt"
	"io"
	"log"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Render runs one visualization pass and writes the figure as a
// self-contained HTML page. Each call draws fresh random skip samples, so
// reloading a served figure re-rolls the skipped cameras.
func (v *Visualizer) Render(w io.Writer) error {
	fig, err := v.build()
	if err != nil {
		return err
	}

	log.Printf("skipped %d of %d cameras", len(fig.skipped), v.set.Len())

	chart := charts.NewLine3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: v.opts.Title,
			Width:     "1100px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    v.opts.Title,
			Subtitle: fmt.Sprintf("cameras=%d skipped=%d plane=%g", v.set.Len(), len(fig.skipped), v.opts.ImagePlane),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: float32(fig.axisMin), Max: float32(fig.axisMax)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Min: float32(fig.axisMin), Max: float32(fig.axisMax)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Min: float32(fig.axisMin), Max: float32(fig.axisMax)}),
	)

	for _, s := range fig.segments {
		chart.AddSeries(s.name, []opts.Chart3DData{
			{Value: []interface{}{s.a.X(), s.a.Y(), s.a.Z()}},
			{Value: []interface{}{s.b.X(), s.b.Y(), s.b.Z()}},
		}, charts.WithLineStyleOpts(opts.LineStyle{Color: s.color, Width: s.width}))
	}

	// Point series (projected image samples and camera index labels) are
	// built as scatter3D charts and merged into the one figure so all
	// series share the same 3D grid.
	if len(fig.points) > 0 {
		scatter := charts.NewScatter3D()
		data := make([]opts.Chart3DData, 0, len(fig.points))
		for _, p := range fig.points {
			data = append(data, opts.Chart3DData{
				Value:     []interface{}{p.pos.X(), p.pos.Y(), p.pos.Z()},
				ItemStyle: &opts.ItemStyle{Color: p.color},
			})
		}
		scatter.AddSeries("image planes", data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
		chart.MultiSeries = append(chart.MultiSeries, scatter.MultiSeries...)
	}

	if len(fig.labels) > 0 {
		scatter := charts.NewScatter3D()
		data := make([]opts.Chart3DData, 0, len(fig.labels))
		for _, l := range fig.labels {
			data = append(data, opts.Chart3DData{
				Name:  l.text,
				Value: []interface{}{l.pos.X(), l.pos.Y(), l.pos.Z()},
			})
		}
		scatter.AddSeries("frame ids", data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 1}),
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Color:     "black",
				Formatter: "{b}",
			}),
		)
		chart.MultiSeries = append(chart.MultiSeries, scatter.MultiSeries...)
	}

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("rendering figure: %w", err)
	}
	return nil
}
