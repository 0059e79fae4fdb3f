package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const challengeTTL = 5 * time.Minute

// GenerateChallenge returns a random message the wallet owner must sign to
// prove ownership of the address.
func GenerateChallenge() string {
	b := make([]byte, 16)
	rand.Read(b)
	return "stablebank verification: " + hex.EncodeToString(b)
}

// StoreChallenge saves the issued challenge for an address with a 5 minute TTL.
func StoreChallenge(rdb *redis.Client, address, challenge string) error {
	ctx := context.Background()
	return rdb.Set(ctx, "verify:challenge:"+address, challenge, challengeTTL).Err()
}

// LoadChallenge returns the outstanding challenge for an address, or "" when
// none was issued or it expired.
func LoadChallenge(rdb *redis.Client, address string) string {
	ctx := context.Background()
	val, err := rdb.Get(ctx, "verify:challenge:"+address).Result()
	if err != nil {
		return ""
	}
	return val
}

// DropChallenge removes a consumed challenge so it cannot be replayed.
func DropChallenge(rdb *redis.Client, address string) {
	ctx := context.Background()
	rdb.Del(ctx, "verify:challenge:"+address)
}

// CanRequestChallenge rate-limits challenge issuance per address.
func CanRequestChallenge(rdb *redis.Client, address string) (bool, string) {
	ctx := context.Background()
	minuteKey := fmt.Sprintf("verify_minute_%s", address)
	hourKey := fmt.Sprintf("verify_hour_%s", address)
	if rdb.Exists(ctx, minuteKey).Val() > 0 {
		return false, "Challenge can be requested at most once per 60 seconds"
	}
	cnt, _ := rdb.Get(ctx, hourKey).Int()
	if cnt >= 10 {
		return false, "Challenge can be requested at most 10 times per hour"
	}
	return true, ""
}

// MarkChallengeRequested records a challenge issuance against the limits.
func MarkChallengeRequested(rdb *redis.Client, address string) {
	ctx := context.Background()
	minuteKey := fmt.Sprintf("verify_minute_%s", address)
	hourKey := fmt.Sprintf("verify_hour_%s", address)
	rdb.Set(ctx, minuteKey, 1, 60*time.Second)
	rdb.Incr(ctx, hourKey)
	rdb.Expire(ctx, hourKey, time.Hour)
}
