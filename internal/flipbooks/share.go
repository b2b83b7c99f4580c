package flipbooks

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ShareMode controls who can open a shared document.
type ShareMode string

// Recognized share modes.
const (
	ShareModePublic     ShareMode = "public"
	ShareModePassword   ShareMode = "password"
	ShareModeRestricted ShareMode = "restricted"
)

// EmbedOptions customizes the generated embed snippet. Only set fields are
// emitted as query parameters on the embed URL.
type EmbedOptions struct {
	Controls  *bool   `json:"controls,omitempty"`
	Title     *bool   `json:"title,omitempty"`
	Autostart *bool   `json:"autostart,omitempty"`
	Page      *int    `json:"page,omitempty"`
	Theme     *string `json:"theme,omitempty"`
}

// ShareCommand configures a new share record.
type ShareCommand struct {
	Mode      ShareMode     `json:"mode,omitempty"`
	Password  *string       `json:"password,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	MaxViews  *int          `json:"max_views,omitempty"`
	Embed     *EmbedOptions `json:"embed,omitempty"`
}

// Share is a persisted sharing record with its composed URL and embed code.
type Share struct {
	ID           string     `json:"id"`
	DocumentID   uuid.UUID  `json:"document_id"`
	Mode         ShareMode  `json:"mode"`
	Password     *string    `json:"password,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxViews     *int       `json:"max_views,omitempty"`
	CurrentViews int        `json:"current_views"`
	ShareURL     string     `json:"share_url"`
	EmbedCode    string     `json:"embed_code"`
	CreatedAt    time.Time  `json:"created_at"`
}

// newShareID returns a lexicographically sortable unique share identifier.
func newShareID(at time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// buildShare composes a share record for the document, deriving its URL and
// embed snippet from the configured public origin.
func buildShare(origin string, documentID uuid.UUID, cmd ShareCommand, at time.Time) *Share {
	mode := cmd.Mode
	if mode == "" {
		mode = ShareModePublic
	}

	id := newShareID(at)
	return &Share{
		ID:         id,
		DocumentID: documentID,
		Mode:       mode,
		Password:   cmd.Password,
		ExpiresAt:  cmd.ExpiresAt,
		MaxViews:   cmd.MaxViews,
		ShareURL:   fmt.Sprintf("%s/flipbook/shared/%s", origin, id),
		EmbedCode:  embedCode(origin, id, cmd.Embed),
		CreatedAt:  at,
	}
}

// embedCode renders an iframe snippet pointing at the embed URL for the
// share, appending only the explicitly supplied options.
func embedCode(origin, shareID string, opts *EmbedOptions) string {
	embedURL := fmt.Sprintf("%s/flipbook/embed/%s", origin, shareID)
	if opts != nil {
		params := url.Values{}
		if opts.Controls != nil {
			params.Set("controls", strconv.FormatBool(*opts.Controls))
		}
		if opts.Title != nil {
			params.Set("title", strconv.FormatBool(*opts.Title))
		}
		if opts.Autostart != nil {
			params.Set("autostart", strconv.FormatBool(*opts.Autostart))
		}
		if opts.Page != nil {
			params.Set("page", strconv.Itoa(*opts.Page))
		}
		if opts.Theme != nil {
			params.Set("theme", *opts.Theme)
		}
		if encoded := params.Encode(); encoded != "" {
			embedURL += "?" + encoded
		}
	}

	return fmt.Sprintf(
		`<iframe src="%s" width="800" height="600" frameborder="0" allowfullscreen></iframe>`,
		embedURL,
	)
}
