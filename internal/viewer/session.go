// Package viewer implements the client-resident session state machine for
// the flipbook viewer: page navigation, discrete zoom, fullscreen, panel
// toggling, and controls auto-hide. Transitions never fail; out-of-range
// input is clamped or ignored.
package viewer

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ZoomLevels is the ordered discrete set of supported zoom percentages.
var ZoomLevels = []int{50, 75, 100, 125, 150, 200}

// DefaultZoom is the zoom percentage used when a document's configured
// default is not a supported level.
const DefaultZoom = 100

// SpreadStep is the number of pages a next/prev navigation advances.
// The viewer displays two-page spreads, so navigation moves a full spread.
const SpreadStep = 2

// Panel identifies the exclusive side panel open in the viewer.
type Panel string

// Panel states. At most one of thumbnails and search is open at any time.
const (
	PanelNone       Panel = "none"
	PanelThumbnails Panel = "thumbnails"
	PanelSearch     Panel = "search"
)

// Sink receives view-tracking emissions from a session. Implementations must
// not block; emission failures are never surfaced to the session.
type Sink interface {
	TrackView(documentID uuid.UUID, pageNumber int, at time.Time)
}

// Session holds the interactive viewer state for a single open document.
// It is never shared between viewer instances and requires no locking.
type Session struct {
	documentID uuid.UUID
	totalPages int

	currentPage int
	zoom        int
	fullscreen  bool
	panel       Panel
	controls    *AutoHide

	sink Sink
	now  func() time.Time
}

// New creates a session positioned at page 1 with the given default zoom.
// Unsupported default zoom values fall back to DefaultZoom. A nil sink
// disables view tracking.
func New(documentID uuid.UUID, totalPages, defaultZoom int, sink Sink) *Session {
	if totalPages < 1 {
		totalPages = 1
	}
	if !slices.Contains(ZoomLevels, defaultZoom) {
		defaultZoom = DefaultZoom
	}

	return &Session{
		documentID:  documentID,
		totalPages:  totalPages,
		currentPage: 1,
		zoom:        defaultZoom,
		panel:       PanelNone,
		controls:    NewAutoHide(ControlsHideDelay),
		sink:        sink,
		now:         time.Now,
	}
}

// CurrentPage returns the 1-based active page.
func (s *Session) CurrentPage() int { return s.currentPage }

// TotalPages returns the page count of the open document.
func (s *Session) TotalPages() int { return s.totalPages }

// Zoom returns the active zoom percentage.
func (s *Session) Zoom() int { return s.zoom }

// IsFullscreen reports whether the viewer is in fullscreen mode.
func (s *Session) IsFullscreen() bool { return s.fullscreen }

// ActivePanel returns the currently open panel.
func (s *Session) ActivePanel() Panel { return s.panel }

// ControlsVisible reports whether viewer controls are shown. Outside
// fullscreen, controls are always visible.
func (s *Session) ControlsVisible() bool {
	if !s.fullscreen {
		return true
	}
	return s.controls.Visible()
}

// GoToPage navigates to page n, clamped to [1, totalPages], and emits a
// view-tracking event.
func (s *Session) GoToPage(n int) {
	if n < 1 {
		n = 1
	}
	if n > s.totalPages {
		n = s.totalPages
	}

	s.currentPage = n
	s.emitView()
}

// NextPage advances by one spread. At the upper bound it is a no-op.
func (s *Session) NextPage() {
	if s.currentPage >= s.totalPages {
		return
	}
	s.GoToPage(s.currentPage + SpreadStep)
}

// PrevPage retreats by one spread. At the lower bound it is a no-op.
func (s *Session) PrevPage() {
	if s.currentPage <= 1 {
		return
	}
	s.GoToPage(s.currentPage - SpreadStep)
}

// FirstPage navigates to page 1.
func (s *Session) FirstPage() {
	s.GoToPage(1)
}

// LastPage navigates to the final page.
func (s *Session) LastPage() {
	s.GoToPage(s.totalPages)
}

// ZoomIn steps to the next zoom level. At the maximum level it is a no-op.
func (s *Session) ZoomIn() {
	idx := slices.Index(ZoomLevels, s.zoom)
	if idx >= 0 && idx < len(ZoomLevels)-1 {
		s.zoom = ZoomLevels[idx+1]
	}
}

// ZoomOut steps to the previous zoom level. At the minimum level it is a no-op.
func (s *Session) ZoomOut() {
	idx := slices.Index(ZoomLevels, s.zoom)
	if idx > 0 {
		s.zoom = ZoomLevels[idx-1]
	}
}

// ResetZoom returns the zoom to 100 percent.
func (s *Session) ResetZoom() {
	s.zoom = DefaultZoom
}

// ToggleFullscreen flips fullscreen mode. Entering fullscreen changes no
// other field; leaving it restores control visibility.
func (s *Session) ToggleFullscreen() {
	if s.fullscreen {
		s.ExitFullscreen()
		return
	}
	s.fullscreen = true
}

// ExitFullscreen leaves fullscreen mode, forces controls visible, and
// cancels any pending auto-hide countdown.
func (s *Session) ExitFullscreen() {
	s.fullscreen = false
	s.controls.Reset()
}

// TogglePanel opens the requested panel, closing any other open panel, or
// closes it when it is already active. PanelNone closes whatever is open.
func (s *Session) TogglePanel(which Panel) {
	if which == PanelNone || s.panel == which {
		s.panel = PanelNone
		return
	}
	s.panel = which
}

// Escape closes whichever of fullscreen, thumbnails, or search is active,
// in that priority order, one per invocation.
func (s *Session) Escape() {
	switch {
	case s.fullscreen:
		s.ExitFullscreen()
	case s.panel == PanelThumbnails:
		s.panel = PanelNone
	case s.panel == PanelSearch:
		s.panel = PanelNone
	}
}

// OnActivity records pointer movement, showing controls and restarting the
// auto-hide countdown. Only meaningful while fullscreen.
func (s *Session) OnActivity(now time.Time) {
	if !s.fullscreen {
		return
	}
	s.controls.OnActivity(now)
}

// Tick advances the auto-hide countdown, hiding the controls once the delay
// elapses without further activity.
func (s *Session) Tick(now time.Time) {
	if !s.fullscreen {
		return
	}
	s.controls.Tick(now)
}

func (s *Session) emitView() {
	if s.sink == nil {
		return
	}
	s.sink.TrackView(s.documentID, s.currentPage, s.now())
}
