package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

const (
	profileKeyPrefix = "profile:"
	walletKeyPrefix  = "wallet:"
	checkpointKey    = "swapIndexer:lastBlock"
	seenTxKey        = "swapIndexer:seenTx"
	leaderboardKey   = "leaderboard:"
)

// RedisRepository is the system of record: profile hashes, the wallet-address
// mapping, the leaderboard sorted sets, the scan checkpoint, and the tx-hash
// dedup set.
type RedisRepository struct {
	client    *redis.Client
	seenTxTTL time.Duration
}

func NewRedisRepository(addr, password string, db int, seenTxTTL time.Duration) *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisRepository{client: client, seenTxTTL: seenTxTTL}
}

var _ repository.ProfileStore = (*RedisRepository)(nil)
var _ repository.CheckpointStore = (*RedisRepository)(nil)
var _ repository.TxSeenStore = (*RedisRepository)(nil)

// Ping verifies the connection; used at startup for an early warning.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Generic Redis methods
func (r *RedisRepository) Set(ctx context.Context, key string, value interface{}) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// ProfileStore implementation

func (r *RedisRepository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	fields, err := r.client.HGetAll(ctx, profileKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil // profile not found
	}
	return parseProfile(id, fields), nil
}

func (r *RedisRepository) SaveProfile(ctx context.Context, p *model.Profile) error {
	badges, err := json.Marshal(p.Badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return r.client.HSet(ctx, profileKeyPrefix+p.ID, map[string]interface{}{
		"username":      p.Username,
		"walletId":      p.WalletID,
		"walletAddress": p.WalletAddress,
		"avatar":        p.Avatar,
		"swapCount":     p.SwapCount,
		"swapVolume":    p.SwapVolume,
		"lpProvided":    p.LpProvided,
		"badges":        string(badges),
		"createdAt":     createdAt.Format(time.RFC3339),
	}).Err()
}

func (r *RedisRepository) IncrementSwapStats(ctx context.Context, id string, countDelta int64, volumeDelta float64) (int64, float64, error) {
	key := profileKeyPrefix + id

	newCount, err := r.client.HIncrBy(ctx, key, "swapCount", countDelta).Result()
	if err != nil {
		return 0, 0, err
	}
	newVolume, err := r.client.HIncrByFloat(ctx, key, "swapVolume", volumeDelta).Result()
	if err != nil {
		return 0, 0, err
	}
	return newCount, newVolume, nil
}

func (r *RedisRepository) SetLeaderboardScore(ctx context.Context, metric model.Metric, id string, score float64) error {
	return r.client.ZAdd(ctx, leaderboardKey+string(metric), redis.Z{
		Score:  score,
		Member: id,
	}).Err()
}

func (r *RedisRepository) ScanProfiles(ctx context.Context, cursor uint64, count int64) (uint64, []*model.Profile, error) {
	keys, next, err := r.client.Scan(ctx, cursor, profileKeyPrefix+"*", count).Result()
	if err != nil {
		return 0, nil, err
	}
	if len(keys) == 0 {
		return next, nil, nil
	}

	// Fetch all hashes of the page in a pipeline
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, nil, err
	}

	profiles := make([]*model.Profile, 0, len(keys))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue // skip failed or vanished keys
		}
		id := strings.TrimPrefix(keys[i], profileKeyPrefix)
		profiles = append(profiles, parseProfile(id, fields))
	}
	return next, profiles, nil
}

func (r *RedisRepository) ResolveWalletID(ctx context.Context, walletAddress string) (string, error) {
	lower := strings.ToLower(walletAddress)
	id, err := r.client.Get(ctx, walletKeyPrefix+lower).Result()
	if err == redis.Nil {
		return lower, nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *RedisRepository) SetWalletMapping(ctx context.Context, walletAddress, id string) error {
	return r.client.Set(ctx, walletKeyPrefix+strings.ToLower(walletAddress), id, 0).Err()
}

// CheckpointStore implementation

func (r *RedisRepository) LoadCheckpoint(ctx context.Context) (uint64, bool, error) {
	val, err := r.client.Get(ctx, checkpointKey).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	block, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed checkpoint %q: %w", val, err)
	}
	return block, true, nil
}

func (r *RedisRepository) SaveCheckpoint(ctx context.Context, block uint64) error {
	return r.client.Set(ctx, checkpointKey, strconv.FormatUint(block, 10), 0).Err()
}

// TxSeenStore implementation

// MarkSeen adds the hash to the dedup set and reports whether it was new. The
// set carries a rolling TTL so it stays bounded; the scanner only re-reads
// the checkpoint boundary, so a window much wider than one pass is enough.
func (r *RedisRepository) MarkSeen(ctx context.Context, txHash string) (bool, error) {
	added, err := r.client.SAdd(ctx, seenTxKey, txHash).Result()
	if err != nil {
		return false, err
	}
	if r.seenTxTTL > 0 {
		if err := r.client.Expire(ctx, seenTxKey, r.seenTxTTL).Err(); err != nil {
			return added == 1, err
		}
	}
	return added == 1, nil
}

func parseProfile(id string, fields map[string]string) *model.Profile {
	p := &model.Profile{
		ID:            id,
		Username:      fields["username"],
		WalletID:      fields["walletId"],
		WalletAddress: fields["walletAddress"],
		Avatar:        fields["avatar"],
	}
	if v, err := strconv.ParseInt(fields["swapCount"], 10, 64); err == nil {
		p.SwapCount = v
	}
	if v, err := strconv.ParseFloat(fields["swapVolume"], 64); err == nil {
		p.SwapVolume = v
	}
	if v, err := strconv.ParseFloat(fields["lpProvided"], 64); err == nil {
		p.LpProvided = v
	}
	if raw := fields["badges"]; raw != "" {
		var badges model.Badges
		if err := json.Unmarshal([]byte(raw), &badges); err == nil {
			p.Badges = badges
		}
	}
	if ts, err := time.Parse(time.RFC3339, fields["createdAt"]); err == nil {
		p.CreatedAt = ts
	}
	return p
}
