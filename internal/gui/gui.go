// Package gui defines the boundary between the decoded video stream and a
// windowing surface. No windowing toolkit ships in this module: Surface is
// the adapter a real front end implements, and Loop drives any Surface from
// the decoder's event channel.
/*------------------------------------------------------------------
 *
 * Purpose:	Consume dvc.Event values and drive a Surface: paste decoded
 *		tiles, repaint, show diagnostic text, and resize on mode
 *		changes.
 *
 *---------------------------------------------------------------*/
package gui

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/kvmconsole/ilo2console/internal/dvc"
)

// Surface is the adapter a concrete front end (a real window, a test
// double, a headless recorder) implements to receive decoded video.
type Surface interface {
	// Paste writes a freshly decoded 16x16 tile at (x, y).
	Paste(x, y int, pixels [256]uint32)
	// Repaint asks the surface to redraw from whatever it has retained.
	Repaint()
	// ShowText displays a diagnostic or firmware print-channel string.
	ShowText(text string)
	// SetScreenSize announces new screen dimensions; any previously
	// pasted tile is now invalid.
	SetScreenSize(width, height int)
}

// Loop drains events from the decoder until ctx is canceled or the channel
// is closed, dispatching each to surface.
func Loop(ctx context.Context, events <-chan dvc.Event, surface Surface) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			dispatch(surface, ev)
		}
	}
}

func dispatch(surface Surface, ev dvc.Event) {
	switch ev.Kind {
	case dvc.EventPasteBlock:
		surface.Paste(ev.X, ev.Y, ev.Pixels)
	case dvc.EventRepaint:
		surface.Repaint()
	case dvc.EventShowText:
		surface.ShowText(ev.Text)
	case dvc.EventSetScreenSize:
		surface.SetScreenSize(ev.Width, ev.Height)
	case dvc.EventExit:
		log.Info("gui: decoder signaled exit")
	}
}

// NullSurface discards every event; useful for headless operation and
// benchmarks.
type NullSurface struct{}

func (NullSurface) Paste(x, y int, pixels [256]uint32) {}
func (NullSurface) Repaint()                           {}
func (NullSurface) ShowText(text string)               {}
func (NullSurface) SetScreenSize(width, height int)    {}

// LogSurface logs every event via charmbracelet/log instead of rendering
// it; useful for diagnostics and for driving the decoder from a terminal.
type LogSurface struct{}

func (LogSurface) Paste(x, y int, pixels [256]uint32) {
	log.Debug("gui: paste", "x", x, "y", y)
}

func (LogSurface) Repaint() {
	log.Debug("gui: repaint")
}

func (LogSurface) ShowText(text string) {
	log.Info("gui: text", "text", text)
}

func (LogSurface) SetScreenSize(width, height int) {
	log.Info("gui: screen size", "width", width, "height", height)
}
