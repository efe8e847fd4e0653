// Package leaderboard maintains an XP ranking of all users in a redis
// sorted set. Scores are pushed after every successful progress
// dispatch, so the set mirrors the persisted XP totals.
package leaderboard

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rankingKey     = "finquest:leaderboard:xp"
	requestTimeout = 2 * time.Second
)

type Entry struct {
	UserID uint `json:"user_id"`
	XP     int  `json:"xp"`
	Rank   int  `json:"rank"`
}

type Board struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Board {
	return &Board{rdb: rdb}
}

// SetScore records the user's current XP total.
func (b *Board) SetScore(userID uint, xp int) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	return b.rdb.ZAdd(ctx, rankingKey, redis.Z{
		Score:  float64(xp),
		Member: memberFor(userID),
	}).Err()
}

// Top returns the n highest ranked users, best first.
func (b *Board) Top(n int64) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	results, err := b.rdb.ZRevRangeWithScores(ctx, rankingKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(results))
	for i, result := range results {
		member, ok := result.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			UserID: uint(id),
			XP:     int(result.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Rank returns the 1-based position of the user, or 0 when unranked.
func (b *Board) Rank(userID uint) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	rank, err := b.rdb.ZRevRank(ctx, rankingKey, memberFor(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(rank) + 1, nil
}

func memberFor(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
