package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	logging "me-linker/internal/infra/log"
)

const (
	chartWidth  = 1200
	chartHeight = 800

	chartAreaLeft   = 150.0
	chartAreaRight  = 1100.0
	chartAreaTop    = 180.0
	chartAreaBottom = 680.0

	barWidth     = 200.0
	titleFontPt  = 42.0
	labelFontPt  = 28.0
	gridLines    = 4
	barValueGapY = 16.0
)

var (
	colorEligible   = color.RGBA{0, 200, 83, 255}
	colorIneligible = color.RGBA{229, 57, 53, 255}
	colorSkipped    = color.RGBA{255, 179, 0, 255}
)

// fontPaths are tried in order; gg's built-in face is used when none loads.
var fontPaths = []string{
	"etc/fonts/Inter-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
}

func loadFont(dc *gg.Context, size float64) bool {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := dc.LoadFontFace(path, size); err == nil {
			return true
		}
	}
	return false
}

// RenderChart draws eligible / ineligible / skipped bars into a PNG at path.
func RenderChart(s Summary, path string) error {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(color.Black)
	dc.Clear()

	fontLoaded := loadFont(dc, titleFontPt)
	if !fontLoaded {
		logging.LogDebug("No TTF font found for chart, using built-in face")
	}

	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("%s: %d wallets", s.Kind, s.Total), chartWidth/2, 80, 0.5, 0.5)

	if fontLoaded {
		loadFont(dc, labelFontPt)
	}

	bars := []struct {
		label string
		value int
		color color.Color
	}{
		{"Eligible", s.Eligible, colorEligible},
		{"Ineligible", s.Ineligible, colorIneligible},
		{"Skipped", s.Skipped, colorSkipped},
	}

	maxValue := 1
	for _, b := range bars {
		if b.value > maxValue {
			maxValue = b.value
		}
	}
	areaHeight := chartAreaBottom - chartAreaTop

	dc.SetColor(color.RGBA{80, 80, 80, 255})
	dc.SetLineWidth(1)
	for i := 0; i <= gridLines; i++ {
		y := chartAreaBottom - float64(i)/gridLines*areaHeight
		dc.DrawLine(chartAreaLeft-40, y, chartAreaRight+40, y)
		dc.Stroke()
	}

	slot := (chartAreaRight - chartAreaLeft) / float64(len(bars))
	for i, b := range bars {
		x := chartAreaLeft + float64(i)*slot + (slot-barWidth)/2
		h := float64(b.value) / float64(maxValue) * areaHeight
		y := chartAreaBottom - h

		dc.SetColor(b.color)
		dc.DrawRectangle(x, y, barWidth, h)
		dc.Fill()

		dc.SetColor(color.White)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.value), x+barWidth/2, y-barValueGapY, 0.5, 0)
		dc.DrawStringAnchored(b.label, x+barWidth/2, chartAreaBottom+40, 0.5, 0.5)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	logging.LogDebug("Chart rendered", zap.String("path", path))
	return nil
}
