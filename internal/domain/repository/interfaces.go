// Package repository defines all the repository interfaces used by domain services
// Following the dependency inversion principle, domain logic depends on these interfaces,
// and infrastructure implementations provide concrete implementations
package repository

import (
	"context"
	"time"

	"github.com/Somtiee/swaparc/internal/domain/model"
)

// ProfileStore is the persistent profile state: one hash per wallet, a
// wallet-address-to-canonical-id mapping, and the denormalized leaderboard
// sorted sets. The profile hash is the source of truth; the sorted sets are a
// read optimization and may be rebuilt from the hashes at any time.
type ProfileStore interface {
	// GetProfile returns nil without error when the profile does not exist.
	GetProfile(ctx context.Context, id string) (*model.Profile, error)

	// SaveProfile writes the full hash, including the JSON-encoded badge set.
	SaveProfile(ctx context.Context, p *model.Profile) error

	// IncrementSwapStats applies the delta with the store's atomic increment
	// primitives and returns the new totals.
	IncrementSwapStats(ctx context.Context, id string, countDelta int64, volumeDelta float64) (int64, float64, error)

	// SetLeaderboardScore upserts (score, member) into the metric's sorted set.
	SetLeaderboardScore(ctx context.Context, metric model.Metric, id string, score float64) error

	// ScanProfiles pages through all stored profiles using the store's native
	// cursor. A returned cursor of 0 means the scan is complete.
	ScanProfiles(ctx context.Context, cursor uint64, count int64) (uint64, []*model.Profile, error)

	// ResolveWalletID maps a wallet address to its canonical profile id,
	// falling back to the lowercased address when no mapping exists.
	ResolveWalletID(ctx context.Context, walletAddress string) (string, error)

	// SetWalletMapping records walletAddress -> canonical profile id.
	SetWalletMapping(ctx context.Context, walletAddress, id string) error
}

// CheckpointStore persists the scanner's last-processed block.
type CheckpointStore interface {
	// LoadCheckpoint reports found=false when no checkpoint has been stored.
	LoadCheckpoint(ctx context.Context) (block uint64, found bool, err error)
	SaveCheckpoint(ctx context.Context, block uint64) error
}

// TxSeenStore is the replay-safety dedup set of processed transaction hashes.
type TxSeenStore interface {
	// MarkSeen records the hash and reports whether it was newly added.
	MarkSeen(ctx context.Context, txHash string) (fresh bool, err error)
}

// SwapArchive is the optional durable archive of priced swap events.
type SwapArchive interface {
	SaveSwaps(ctx context.Context, swaps []*model.SwapEvent) error
	SwapsSince(ctx context.Context, since time.Time) ([]*model.SwapEvent, error)
}

// SwapPublisher is the optional downstream event feed for indexed swaps.
type SwapPublisher interface {
	PublishSwaps(ctx context.Context, swaps []*model.SwapEvent) error
	Close() error
}
