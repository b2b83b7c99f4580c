package viewer_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/viewer"
	"github.com/google/uuid"
)

type captureSink struct {
	pages []int
}

func (c *captureSink) TrackView(_ uuid.UUID, pageNumber int, _ time.Time) {
	c.pages = append(c.pages, pageNumber)
}

func TestSession_New_Defaults(t *testing.T) {
	s := viewer.New(uuid.New(), 10, 150, nil)

	if s.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d, want 1", s.CurrentPage())
	}
	if s.Zoom() != 150 {
		t.Errorf("Zoom() = %d, want 150", s.Zoom())
	}
	if s.IsFullscreen() {
		t.Error("IsFullscreen() = true, want false")
	}
	if s.ActivePanel() != viewer.PanelNone {
		t.Errorf("ActivePanel() = %q, want %q", s.ActivePanel(), viewer.PanelNone)
	}
	if !s.ControlsVisible() {
		t.Error("ControlsVisible() = false, want true")
	}
}

func TestSession_New_UnsupportedZoomFallsBack(t *testing.T) {
	s := viewer.New(uuid.New(), 10, 37, nil)

	if s.Zoom() != viewer.DefaultZoom {
		t.Errorf("Zoom() = %d, want %d", s.Zoom(), viewer.DefaultZoom)
	}
}

func TestSession_GoToPage_Clamps(t *testing.T) {
	tests := []struct {
		name string
		page int
		want int
	}{
		{"below range", -5, 1},
		{"zero", 0, 1},
		{"in range", 7, 7},
		{"above range", 99, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := viewer.New(uuid.New(), 10, 100, nil)
			s.GoToPage(tt.page)

			if s.CurrentPage() != tt.want {
				t.Errorf("CurrentPage() = %d, want %d", s.CurrentPage(), tt.want)
			}
		})
	}
}

func TestSession_SpreadNavigation(t *testing.T) {
	s := viewer.New(uuid.New(), 10, 100, nil)

	s.NextPage()
	if s.CurrentPage() != 3 {
		t.Errorf("NextPage() from 1 = %d, want 3", s.CurrentPage())
	}

	s.PrevPage()
	if s.CurrentPage() != 1 {
		t.Errorf("PrevPage() back = %d, want 1", s.CurrentPage())
	}

	// at the lower bound, PrevPage is a no-op
	s.PrevPage()
	if s.CurrentPage() != 1 {
		t.Errorf("PrevPage() at bound = %d, want 1", s.CurrentPage())
	}

	s.LastPage()
	if s.CurrentPage() != 10 {
		t.Errorf("LastPage() = %d, want 10", s.CurrentPage())
	}

	s.NextPage()
	if s.CurrentPage() != 10 {
		t.Errorf("NextPage() at bound = %d, want 10", s.CurrentPage())
	}

	// advancing from the penultimate page clamps to the final page
	s.GoToPage(9)
	s.NextPage()
	if s.CurrentPage() != 10 {
		t.Errorf("NextPage() from 9 = %d, want 10", s.CurrentPage())
	}

	s.FirstPage()
	if s.CurrentPage() != 1 {
		t.Errorf("FirstPage() = %d, want 1", s.CurrentPage())
	}
}

func TestSession_Zoom_Steps(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 100, nil)

	s.ZoomIn()
	if s.Zoom() != 125 {
		t.Errorf("ZoomIn() = %d, want 125", s.Zoom())
	}

	s.ZoomOut()
	s.ZoomOut()
	if s.Zoom() != 75 {
		t.Errorf("ZoomOut() x2 = %d, want 75", s.Zoom())
	}

	s.ResetZoom()
	if s.Zoom() != 100 {
		t.Errorf("ResetZoom() = %d, want 100", s.Zoom())
	}
}

func TestSession_Zoom_BoundsAreNoOps(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 200, nil)

	s.ZoomIn()
	if s.Zoom() != 200 {
		t.Errorf("ZoomIn() at max = %d, want 200", s.Zoom())
	}

	for range 10 {
		s.ZoomOut()
	}
	if s.Zoom() != 50 {
		t.Errorf("ZoomOut() past min = %d, want 50", s.Zoom())
	}
}

func TestSession_Panels_Exclusive(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 100, nil)

	s.TogglePanel(viewer.PanelThumbnails)
	if s.ActivePanel() != viewer.PanelThumbnails {
		t.Errorf("ActivePanel() = %q, want thumbnails", s.ActivePanel())
	}

	// opening search closes thumbnails
	s.TogglePanel(viewer.PanelSearch)
	if s.ActivePanel() != viewer.PanelSearch {
		t.Errorf("ActivePanel() = %q, want search", s.ActivePanel())
	}

	// re-toggling the open panel closes it
	s.TogglePanel(viewer.PanelSearch)
	if s.ActivePanel() != viewer.PanelNone {
		t.Errorf("ActivePanel() = %q, want none", s.ActivePanel())
	}
}

func TestSession_Escape_Priority(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 100, nil)

	s.ToggleFullscreen()
	s.TogglePanel(viewer.PanelThumbnails)

	s.Escape()
	if s.IsFullscreen() {
		t.Error("Escape() should exit fullscreen first")
	}
	if s.ActivePanel() != viewer.PanelThumbnails {
		t.Errorf("Escape() closed panel early, ActivePanel() = %q", s.ActivePanel())
	}

	s.Escape()
	if s.ActivePanel() != viewer.PanelNone {
		t.Errorf("Escape() should close thumbnails, got %q", s.ActivePanel())
	}

	// with nothing open, Escape is a no-op
	s.Escape()
	if s.CurrentPage() != 1 || s.Zoom() != 100 {
		t.Error("Escape() with nothing open changed state")
	}
}

func TestSession_AutoHide_Fullscreen(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 100, nil)
	base := time.Now()

	s.ToggleFullscreen()
	if !s.ControlsVisible() {
		t.Error("controls should start visible in fullscreen")
	}

	s.OnActivity(base)
	s.Tick(base.Add(viewer.ControlsHideDelay - time.Millisecond))
	if !s.ControlsVisible() {
		t.Error("controls hid before the delay elapsed")
	}

	s.Tick(base.Add(viewer.ControlsHideDelay))
	if s.ControlsVisible() {
		t.Error("controls still visible after the delay elapsed")
	}

	// activity restores visibility and restarts the countdown
	s.OnActivity(base.Add(5 * time.Second))
	if !s.ControlsVisible() {
		t.Error("activity should restore controls")
	}

	// leaving fullscreen forces controls visible
	s.Tick(base.Add(20 * time.Second))
	s.ExitFullscreen()
	if !s.ControlsVisible() {
		t.Error("controls should be visible outside fullscreen")
	}
}

func TestSession_AutoHide_IgnoredOutsideFullscreen(t *testing.T) {
	s := viewer.New(uuid.New(), 5, 100, nil)
	base := time.Now()

	s.OnActivity(base)
	s.Tick(base.Add(time.Minute))

	if !s.ControlsVisible() {
		t.Error("controls must never hide outside fullscreen")
	}
}

func TestSession_GoToPage_EmitsViewEvents(t *testing.T) {
	sink := &captureSink{}
	s := viewer.New(uuid.New(), 10, 100, sink)

	s.GoToPage(4)
	s.NextPage()
	s.LastPage()

	want := []int{4, 6, 10}
	if len(sink.pages) != len(want) {
		t.Fatalf("tracked %d events, want %d", len(sink.pages), len(want))
	}
	for i, page := range want {
		if sink.pages[i] != page {
			t.Errorf("event %d page = %d, want %d", i, sink.pages[i], page)
		}
	}
}

func TestSession_NextPage_AtBoundEmitsNothing(t *testing.T) {
	sink := &captureSink{}
	s := viewer.New(uuid.New(), 1, 100, sink)

	s.NextPage()
	s.PrevPage()

	if len(sink.pages) != 0 {
		t.Errorf("tracked %d events at bounds, want 0", len(sink.pages))
	}
}
