package window

import (
	"github.com/Carmen-Shannon/ruckus/config"
	"go.uber.org/zap"
)

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithMaxWidth sets the maximum allowed window width. Zero removes the limit.
//
// Parameters:
//   - maxWidth: maximum width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxWidth(maxWidth int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = maxWidth
	}
}

// WithMaxHeight sets the maximum allowed window height. Zero removes the limit.
//
// Parameters:
//   - maxHeight: maximum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxHeight(maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxHeight = maxHeight
	}
}

// WithMinWidth sets the minimum allowed window width.
//
// Parameters:
//   - minWidth: minimum width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinWidth(minWidth int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
	}
}

// WithMinHeight sets the minimum allowed window height.
//
// Parameters:
//   - minHeight: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinHeight(minHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minHeight = minHeight
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithResizable sets whether the user can resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithCloseOnEscape sets whether pressing Escape closes the window. Enabled by default.
func WithCloseOnEscape(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.closeOnEscape = enabled
	}
}

// WithCursorCaptured starts the window with the cursor hidden and locked.
func WithCursorCaptured(captured bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.cursorCaptured = captured
	}
}

// WithLogger sets the logger used for window lifecycle events.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		if logger != nil {
			w.logger = logger.Named("window")
		}
	}
}

// WithConfig applies the window section of the configuration.
//
// Parameters:
//   - cfg: the window configuration
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithConfig(cfg config.WindowConfig) WindowBuilderOption {
	return func(w *engineWindow) {
		if cfg.Title != "" {
			w.title = cfg.Title
		}
		if cfg.Width > 0 {
			w.width = cfg.Width
		}
		if cfg.Height > 0 {
			w.height = cfg.Height
		}
		w.minWidth = cfg.MinWidth
		w.minHeight = cfg.MinHeight
		w.resizable = cfg.Resizable
	}
}
