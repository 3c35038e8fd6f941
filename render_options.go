package mdfmt

// RenderOption configures a Renderer.
type RenderOption func(*renderConfig)

type renderConfig struct {
	maxLineLength int
	widthMode     WidthMode
}

// WithMaxLineLength reflows wrap-eligible text to n columns. Zero keeps the
// source line breaks.
func WithMaxLineLength(n int) RenderOption {
	return func(cfg *renderConfig) {
		cfg.maxLineLength = n
	}
}

// WithWidthMode selects how text width is measured for reflow and table
// column sizing.
func WithWidthMode(mode WidthMode) RenderOption {
	return func(cfg *renderConfig) {
		cfg.widthMode = mode
	}
}
