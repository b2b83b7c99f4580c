package viewer

import (
	"context"
	"time"

	"github.com/JaimeStill/flipbook-lab/internal/flipbooks"
	"github.com/google/uuid"
)

// StoreSink forwards session view emissions to the document store without
// blocking the session.
type StoreSink struct {
	sys flipbooks.System
}

// NewStoreSink creates a sink that records view events against the store.
func NewStoreSink(sys flipbooks.System) *StoreSink {
	return &StoreSink{sys: sys}
}

func (s *StoreSink) TrackView(documentID uuid.UUID, pageNumber int, at time.Time) {
	go s.sys.TrackView(context.Background(), flipbooks.ViewEvent{
		DocumentID: documentID,
		PageNumber: pageNumber,
		Timestamp:  at,
	})
}
