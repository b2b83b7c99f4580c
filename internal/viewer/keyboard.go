package viewer

// Action identifies a keyboard-driven viewer transition.
type Action string

// Keyboard actions.
const (
	ActionNone             Action = ""
	ActionNextPage         Action = "next_page"
	ActionPrevPage         Action = "prev_page"
	ActionFirstPage        Action = "first_page"
	ActionLastPage         Action = "last_page"
	ActionZoomIn           Action = "zoom_in"
	ActionZoomOut          Action = "zoom_out"
	ActionResetZoom        Action = "reset_zoom"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionToggleThumbnails Action = "toggle_thumbnails"
	ActionToggleSearch     Action = "toggle_search"
	ActionEscape           Action = "escape"
)

// Keymap maps logical key names to viewer actions.
var Keymap = map[string]Action{
	"ArrowRight": ActionNextPage,
	"PageDown":   ActionNextPage,
	" ":          ActionNextPage,
	"ArrowLeft":  ActionPrevPage,
	"PageUp":     ActionPrevPage,
	"Home":       ActionFirstPage,
	"End":        ActionLastPage,
	"+":          ActionZoomIn,
	"=":          ActionZoomIn,
	"-":          ActionZoomOut,
	"0":          ActionResetZoom,
	"f":          ActionToggleFullscreen,
	"t":          ActionToggleThumbnails,
	"s":          ActionToggleSearch,
	"Escape":     ActionEscape,
}

// HandleKey applies the transition mapped to key. Unmapped keys are ignored,
// and all keyboard transitions are suppressed while a text-entry control has
// focus.
func (s *Session) HandleKey(key string, textInputFocused bool) {
	if textInputFocused {
		return
	}
	s.Apply(Keymap[key])
}

// Apply performs the transition for a logical action.
func (s *Session) Apply(action Action) {
	switch action {
	case ActionNextPage:
		s.NextPage()
	case ActionPrevPage:
		s.PrevPage()
	case ActionFirstPage:
		s.FirstPage()
	case ActionLastPage:
		s.LastPage()
	case ActionZoomIn:
		s.ZoomIn()
	case ActionZoomOut:
		s.ZoomOut()
	case ActionResetZoom:
		s.ResetZoom()
	case ActionToggleFullscreen:
		s.ToggleFullscreen()
	case ActionToggleThumbnails:
		s.TogglePanel(PanelThumbnails)
	case ActionToggleSearch:
		s.TogglePanel(PanelSearch)
	case ActionEscape:
		s.Escape()
	}
}
