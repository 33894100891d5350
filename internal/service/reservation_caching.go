package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ReservationCaching keeps reservation details in Redis (cache-aside).
// Writes to a reservation evict its entry.  A table booking detail embeds
// the table's is_available flag, which any write on that table may flip,
// so cached table bookings are indexed per table and a write on a table
// or a reconcile that changes it evicts them all.  Redis errors are
// logged and never returned; the wrapped Reservations is the fallback.
type ReservationCaching struct {
	Reservations

	Redis  *redis.Client
	TTL    time.Duration
	Prefix string
	Log    *zap.Logger
}

func (rc *ReservationCaching) key(id string) string {
	return rc.Prefix + ":reservation:" + id
}

func (rc *ReservationCaching) tableKey(tableID string) string {
	return rc.Prefix + ":table:" + tableID + ":reservations"
}

func (rc *ReservationCaching) Get(ctx context.Context, id string) (model.ReservationDetail, error) {
	key := rc.key(id)

	val, err := rc.Redis.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		// miss
	case err != nil:
		rc.logger().Warn("can't get reservation from redis", zap.String("key", key), zap.Error(err))
	default:
		var d model.ReservationDetail
		if err := json.Unmarshal(val, &d); err != nil {
			rc.logger().Warn("can't decode cached reservation", zap.String("key", key), zap.Error(err))
			break
		}
		d.SetItem(model.ItemRef{Kind: d.ItemType, ID: d.ItemID})
		return d, nil
	}

	d, err := rc.Reservations.Get(ctx, id)
	if err != nil {
		return d, err
	}

	b, err := json.Marshal(d)
	if err != nil {
		rc.logger().Warn("can't encode reservation for cache", zap.String("key", key), zap.Error(err))
		return d, nil
	}
	_, err = rc.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, b, rc.TTL)
		if d.Item.Kind == model.KindRestaurantTable {
			tk := rc.tableKey(d.Item.ID)
			p.SAdd(ctx, tk, id)
			p.Expire(ctx, tk, rc.TTL)
		}
		return nil
	})
	if err != nil {
		rc.logger().Warn("can't set reservation in redis", zap.String("key", key), zap.Error(err))
	}
	return d, nil
}

func (rc *ReservationCaching) Create(ctx context.Context, in CreateInput) (model.Reservation, error) {
	r, err := rc.Reservations.Create(ctx, in)
	if err == nil {
		rc.evictItem(ctx, r.Item)
	}
	return r, err
}

func (rc *ReservationCaching) Update(ctx context.Context, id string, in UpdateInput) (model.Reservation, error) {
	r, err := rc.Reservations.Update(ctx, id, in)
	if err == nil {
		rc.evict(ctx, id)
		rc.evictItem(ctx, r.Item)
	}
	return r, err
}

func (rc *ReservationCaching) Delete(ctx context.Context, id string) error {
	ref, known := rc.itemOf(ctx, id)
	err := rc.Reservations.Delete(ctx, id)
	if err == nil || IsKind(err, KindNotFound) {
		rc.evict(ctx, id)
	}
	if err == nil && known {
		rc.evictItem(ctx, ref)
	}
	return err
}

func (rc *ReservationCaching) ReconcileTables(ctx context.Context, restaurantID string, dryRun bool) ([]model.TableAvailabilityChange, error) {
	changes, err := rc.Reservations.ReconcileTables(ctx, restaurantID, dryRun)
	if err == nil && !dryRun {
		for _, c := range changes {
			rc.evictItem(ctx, model.TableRef(c.TableID))
		}
	}
	return changes, err
}

// itemOf resolves the item a reservation points at before it is deleted,
// from the cached entry when there is one.
func (rc *ReservationCaching) itemOf(ctx context.Context, id string) (model.ItemRef, bool) {
	if val, err := rc.Redis.Get(ctx, rc.key(id)).Bytes(); err == nil {
		var r model.Reservation
		if json.Unmarshal(val, &r) == nil && r.ItemID != "" {
			return model.ItemRef{Kind: r.ItemType, ID: r.ItemID}, true
		}
	}
	d, err := rc.Reservations.Get(ctx, id)
	if err != nil {
		return model.ItemRef{}, false
	}
	return d.Item, true
}

// evictItem drops every cached booking of a restaurant table.
func (rc *ReservationCaching) evictItem(ctx context.Context, ref model.ItemRef) {
	if ref.Kind != model.KindRestaurantTable {
		return
	}
	tk := rc.tableKey(ref.ID)
	ids, err := rc.Redis.SMembers(ctx, tk).Result()
	if err != nil {
		rc.logger().Warn("can't read table index from redis", zap.String("key", tk), zap.Error(err))
		return
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, rc.key(id))
	}
	keys = append(keys, tk)
	if err := rc.Redis.Del(ctx, keys...).Err(); err != nil {
		rc.logger().Warn("can't evict table bookings from redis", zap.String("table_id", ref.ID), zap.Error(err))
	}
}

func (rc *ReservationCaching) evict(ctx context.Context, id string) {
	if err := rc.Redis.Del(ctx, rc.key(id)).Err(); err != nil {
		rc.logger().Warn("can't evict reservation from redis", zap.String("reservation_id", id), zap.Error(err))
	}
}

func (rc *ReservationCaching) logger() *zap.Logger {
	if rc.Log == nil {
		return zap.NewNop()
	}
	return rc.Log
}
