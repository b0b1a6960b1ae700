package indexer

import (
	"context"
	"strings"

	"github.com/Somtiee/swaparc/internal/arcscan"
	"github.com/Somtiee/swaparc/internal/chain"
	"github.com/Somtiee/swaparc/internal/domain/model"
)

// Batch is one page of candidate swaps. LastBlock is the highest block in the
// underlying page, including non-swap transactions, so the scanner can keep
// paging past blocks with no swap activity.
type Batch struct {
	Events    []*model.SwapEvent
	LastBlock uint64
}

// SwapSource produces successive batches of decoded swap events starting at a
// block. A nil batch means the source is caught up from that start block.
// Implementations exist for block-explorer polling; an event-log subscription
// fits behind the same interface.
type SwapSource interface {
	NextBatch(ctx context.Context, startBlock uint64) (*Batch, error)
}

// TxPager fetches raw explorer transaction pages.
type TxPager interface {
	FetchPage(ctx context.Context, startBlock uint64) ([]arcscan.Transaction, error)
}

// ArcscanSource adapts the block-explorer txlist API into a SwapSource:
// page through raw transactions, silently drop everything that is not a pool
// swap call, and surface the rest as unvalued swap events.
type ArcscanSource struct {
	pager TxPager
}

func NewArcscanSource(pager TxPager) *ArcscanSource {
	return &ArcscanSource{pager: pager}
}

func (s *ArcscanSource) NextBatch(ctx context.Context, startBlock uint64) (*Batch, error) {
	txs, err := s.pager.FetchPage(ctx, startBlock)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}

	batch := &Batch{LastBlock: txs[len(txs)-1].Block()}
	for _, tx := range txs {
		input := tx.InputBytes()
		if len(input) == 0 {
			continue
		}
		call, ok := chain.DecodeSwap(input)
		if !ok {
			continue // expected: most pool transactions are not swaps
		}
		batch.Events = append(batch.Events, &model.SwapEvent{
			TxHash:        tx.Hash,
			Trader:        strings.ToLower(tx.From),
			TokenInIndex:  call.TokenInIndex,
			TokenOutIndex: call.TokenOutIndex,
			AmountIn:      call.AmountIn,
			BlockNumber:   tx.Block(),
			Timestamp:     tx.Time(),
		})
	}
	return batch, nil
}
