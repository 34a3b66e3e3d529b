package api

import (
	"context"

	"github.com/vytor/recall/internal/services"
)

// ReadinessChecker reports whether a backing store can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type Server struct {
	DB             ReadinessChecker
	ItemService    services.ItemService
	ReviewService  services.ReviewService
	StatsService   services.StatsService
	DeckService    services.DeckService
	MaxImportBytes int64
}

const defaultMaxImportBytes = 32 << 20

func (s *Server) maxImportBytes() int64 {
	if s.MaxImportBytes > 0 {
		return s.MaxImportBytes
	}
	return defaultMaxImportBytes
}
