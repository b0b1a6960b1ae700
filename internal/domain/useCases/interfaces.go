package useCases

import (
	"context"
	"net/http"

	"github.com/Somtiee/swaparc/internal/domain/model"
)

// Leaderboard defines the interface for ranked leaderboard reads.
type Leaderboard interface {
	TopN(ctx context.Context, metric model.Metric, n int) ([]model.LeaderboardEntry, error)
	TopByMetric(ctx context.Context, metric model.Metric, n int) ([]model.RankedProfile, error)
}

// Profiles defines the profile read/write surface used by the HTTP layer.
type Profiles interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Save(ctx context.Context, req *SaveProfileRequest) (*model.Profile, error)
	UpdateLp(ctx context.Context, userID string, lpTotalValue float64) (*model.Profile, error)
}

// SaveProfileRequest carries the client-settable identity fields. Numeric
// stats are never taken from the client.
type SaveProfileRequest struct {
	UserID        string
	Username      string
	WalletID      string
	WalletAddress string
	Avatar        string
}

// Broadcaster defines an interface for pushing updates to WebSocket/API layers.
type Broadcaster interface {
	BroadcastAggregate(update *model.AggregateUpdate)
	Handler() func(http.ResponseWriter, *http.Request)
}
