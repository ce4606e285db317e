package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/basket/core/master"
	"github.com/huangsam/basket/core/normalize"
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
)

// currentCacheVersion defines the version of the snapshot cache schema.
// Bump it whenever MasterRecord or the join semantics change.
const currentCacheVersion = 1

// Snapshot is a materialized master record set with its provenance.
type Snapshot struct {
	Fingerprint string
	CacheHit    bool
	Stats       schema.NormalizeStats
	Records     []schema.MasterRecord
}

// cachedSnapshot is the payload stored in the snapshot cache.
type cachedSnapshot struct {
	Stats   schema.NormalizeStats `json:"stats"`
	Records []schema.MasterRecord `json:"records"`
}

// LoadSnapshot returns the master record set for the configured source.
// A cached copy is used when the source fingerprint and normalize policy match,
// unless cfg.Refresh is set.
func LoadSnapshot(ctx context.Context, cfg *contract.Config, src contract.Source, mgr contract.CacheManager) (*Snapshot, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetSnapshotStore()
	}

	fingerprint, err := src.Fingerprint(ctx)
	if err != nil {
		contract.LogWarn("Source fingerprint unavailable, skipping snapshot cache", err)
		store = nil
	}

	if store == nil {
		// Fallback to direct computation
		snap, err := buildSnapshot(ctx, cfg, src)
		if err != nil {
			return nil, err
		}
		snap.Fingerprint = fingerprint
		recordSnapshot(snap, cfg.Refresh)
		return snap, nil
	}

	key := snapshotCacheKey(fingerprint, cfg.Policy.Normalize)

	// Check for cache hit
	if !cfg.Refresh {
		if cached := checkCacheHit(store, key); cached != nil {
			snap := &Snapshot{
				Fingerprint: fingerprint,
				CacheHit:    true,
				Stats:       cached.Stats,
				Records:     cached.Records,
			}
			recordSnapshot(snap, false)
			return snap, nil
		}
	}

	// Cache miss or refresh: compute and store
	snap, err := computeAndStore(ctx, cfg, src, store, key)
	if err != nil {
		return nil, err
	}
	snap.Fingerprint = fingerprint
	recordSnapshot(snap, cfg.Refresh)
	return snap, nil
}

// buildSnapshot loads, normalizes and joins the raw tables.
func buildSnapshot(ctx context.Context, cfg *contract.Config, src contract.Source) (*Snapshot, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", src.Describe(), err)
	}
	clean, stats := normalize.Normalize(raw, cfg.Policy.Normalize)
	return &Snapshot{
		Stats:   stats,
		Records: master.Join(clean),
	}, nil
}

// checkCacheHit attempts to retrieve and validate a cached snapshot
func checkCacheHit(store contract.CacheStore, key string) *cachedSnapshot {
	data, version, _, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion {
		return nil // Schema changed since the entry was written
	}
	var result cachedSnapshot
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore builds the snapshot and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, src contract.Source, store contract.CacheStore, key string) (*Snapshot, error) {
	snap, err := buildSnapshot(ctx, cfg, src)
	if err != nil {
		return nil, err
	}

	// Store in cache
	data, err := json.Marshal(cachedSnapshot{Stats: snap.Stats, Records: snap.Records})
	if err == nil {
		err = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	if err != nil {
		contract.LogWarn("Failed to cache snapshot", err)
	}
	return snap, nil
}

// snapshotCacheKey derives the cache key from the source fingerprint and the
// normalize policy, since both change the resulting master set.
func snapshotCacheKey(fingerprint string, policy schema.NormalizePolicy) string {
	statuses := make([]string, len(policy.RejectStatuses))
	for i, s := range policy.RejectStatuses {
		statuses[i] = strings.ToLower(strings.TrimSpace(s))
	}
	slices.Sort(statuses)
	policyHash := sha256.Sum256([]byte(strings.Join(statuses, ",")))
	return fmt.Sprintf("master:%s:%x", fingerprint, policyHash[:8])
}

// recordSnapshot feeds snapshot counters into the run statistics.
func recordSnapshot(snap *Snapshot, refresh bool) {
	if !snap.CacheHit {
		Stats.RecordNormalize(snap.Stats)
	}
	Stats.RecordSnapshot(len(snap.Records), snap.CacheHit, refresh)
}
