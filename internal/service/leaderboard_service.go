package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/observability"
	"github.com/noah-isme/schedmate-api/internal/repository"
)

// LeaderboardInvalidator drops cached rankings after progress changes.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context, classID uint)
}

// LeaderboardService ranks the members of a class by finished tasks.
type LeaderboardService interface {
	LeaderboardInvalidator
	Leaderboard(ctx context.Context, classID uint) (dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	progress repository.ProgressRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewLeaderboardService builds the leaderboard aggregator. cache may be nil.
func NewLeaderboardService(progress repository.ProgressRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		progress: progress,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func leaderboardCacheKey(classID uint) string {
	return fmt.Sprintf("leaderboard:class:%d", classID)
}

func (s *leaderboardService) Leaderboard(ctx context.Context, classID uint) (dto.LeaderboardResponse, error) {
	cacheKey := leaderboardCacheKey(classID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.LeaderboardLookups().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("class_id", classID).Msg("leaderboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
		observability.LeaderboardLookups().WithLabelValues("miss").Inc()
	}

	rows, err := s.progress.ListTimedCompletionsForClass(ctx, classID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	response := dto.LeaderboardResponse{
		ClassID: classID,
		Entries: rankCompletions(rows),
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return response, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context, classID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardCacheKey(classID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("class_id", classID).Msg("failed to invalidate leaderboard cache")
	}
}

type standing struct {
	entry dto.LeaderboardEntry
	total time.Duration
}

// rankCompletions orders users by completed count (desc), total elapsed time
// (asc) and user id (asc). Ranks start at 1.
func rankCompletions(rows []repository.LeaderboardRow) []dto.LeaderboardEntry {
	byUser := make(map[uint]*standing)
	for _, row := range rows {
		current, ok := byUser[row.UserID]
		if !ok {
			current = &standing{entry: dto.LeaderboardEntry{
				UserID:   row.UserID,
				Username: row.Username,
				PhotoURL: row.PhotoURL,
			}}
			byUser[row.UserID] = current
		}
		current.entry.CompletedTasks++
		current.total += row.EndTime.Sub(row.StartTime)
	}

	standings := make([]*standing, 0, len(byUser))
	for _, s := range byUser {
		standings = append(standings, s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.entry.CompletedTasks != b.entry.CompletedTasks {
			return a.entry.CompletedTasks > b.entry.CompletedTasks
		}
		if a.total != b.total {
			return a.total < b.total
		}
		return a.entry.UserID < b.entry.UserID
	})

	entries := make([]dto.LeaderboardEntry, 0, len(standings))
	for i, s := range standings {
		s.entry.Rank = i + 1
		s.entry.TotalTimeSeconds = int64(s.total / time.Second)
		entries = append(entries, s.entry)
	}

	return entries
}
