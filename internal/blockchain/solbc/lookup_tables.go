package solbc

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// tableFetcher returns the addresses of an active lookup table.
type tableFetcher func(ctx context.Context, addr solana.PublicKey) (addresses solana.PublicKeySlice, active bool, err error)

// LookupTables caches Address Lookup Table contents for v0 transactions.
// Reads are lock-free; refresh replaces the whole map.
type LookupTables struct {
	addresses []solana.PublicKey
	tables    atomic.Value // map[solana.PublicKey]solana.PublicKeySlice
	interval  time.Duration
	fetch     tableFetcher
	logger    *zap.Logger
}

// NewLookupTables creates the cache. With no addresses configured AddressTables
// stays empty and transactions compile without lookups.
func NewLookupTables(client *Client, addresses []solana.PublicKey, refreshInterval time.Duration, logger *zap.Logger) *LookupTables {
	return newLookupTables(addresses, refreshInterval, client.AddressLookupTable, logger)
}

func newLookupTables(addresses []solana.PublicKey, interval time.Duration, fetch tableFetcher, logger *zap.Logger) *LookupTables {
	lt := &LookupTables{
		addresses: addresses,
		interval:  interval,
		fetch:     fetch,
		logger:    logger.Named("lookup-tables"),
	}
	lt.tables.Store(make(map[solana.PublicKey]solana.PublicKeySlice))
	return lt
}

// Start loads the tables once, then refreshes them until ctx is done.
func (lt *LookupTables) Start(ctx context.Context) {
	if len(lt.addresses) == 0 {
		lt.logger.Info("No lookup tables configured, building legacy-compatible messages")
		return
	}

	lt.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(lt.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lt.Refresh(ctx)
			}
		}
	}()
}

// AddressTables returns the cached tables for solana.TransactionAddressTables.
func (lt *LookupTables) AddressTables() map[solana.PublicKey]solana.PublicKeySlice {
	return lt.tables.Load().(map[solana.PublicKey]solana.PublicKeySlice)
}

// Refresh re-fetches every configured table. Inactive or failing tables are dropped.
func (lt *LookupTables) Refresh(ctx context.Context) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(lt.addresses))

	for _, addr := range lt.addresses {
		addresses, active, err := lt.fetch(ctx, addr)
		if err != nil {
			lt.logger.Warn("Failed to fetch lookup table", zap.String("table", addr.String()), zap.Error(err))
			continue
		}
		if !active {
			lt.logger.Warn("Lookup table is deactivated, skipping", zap.String("table", addr.String()))
			continue
		}
		tables[addr] = addresses
	}

	lt.tables.Store(tables)
	lt.logger.Debug("Lookup tables refreshed", zap.Int("tables", len(tables)))
}
