package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/config"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const recommendationCacheTTL = 30 * time.Second

// Candidate is one ranked teammate suggestion. DomainMatch is carried for
// display and tie-break context only; it does not enter the score.
type Candidate struct {
	UserID             uuid.UUID `json:"userId"`
	DisplayName        string    `json:"displayName"`
	ReputationScore    int       `json:"reputationScore"`
	ActiveProjectCount int       `json:"activeProjectCount"`
	SkillMatch         int       `json:"skillMatch"`
	DomainMatch        int       `json:"domainMatch"`
	RecentActivity     int       `json:"recentActivity"`
	RankingScore       float64   `json:"rankingScore"`
}

// MatchingService is a read-only consumer of committed user aggregates.
// Given identical aggregate state its output is deterministic.
type MatchingService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	cache    *redis.Client
	log      *logrus.Logger
}

func NewMatchingService(userRepo repository.UserRepository, cfg *config.Config, cache *redis.Client, log *logrus.Logger) *MatchingService {
	return &MatchingService{
		userRepo: userRepo,
		cfg:      cfg,
		cache:    cache,
		log:      log,
	}
}

// Recommend returns up to RecommendationLimit candidates ordered by
// ranking score. The pool is bounded: the top CandidatePoolSize available
// users by reputation at or above the threshold. That is a bounded-cost
// sampling, not an exhaustive global ranking.
func (s *MatchingService) Recommend(ctx context.Context, userID uuid.UUID) ([]*Candidate, error) {
	if cached := s.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	skills, err := s.userRepo.GetSkillIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	domains, err := s.userRepo.GetDomainIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := s.userRepo.GetCandidatePool(ctx, userID, s.cfg.ReputationThreshold, s.cfg.CandidatePoolSize)
	if err != nil {
		return nil, err
	}

	skillSet := toSet(skills)
	domainSet := toSet(domains)

	candidates := make([]*Candidate, 0, len(pool))
	for _, u := range pool {
		candidateSkills, err := s.userRepo.GetSkillIDs(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		candidateDomains, err := s.userRepo.GetDomainIDs(ctx, u.ID)
		if err != nil {
			return nil, err
		}

		skillMatch := jaccardPercent(skillSet, toSet(candidateSkills))
		domainMatch := jaccardPercent(domainSet, toSet(candidateDomains))
		recentActivity := recentActivityScore(u.ActiveProjectCount)

		score := 0.5*float64(u.ReputationScore) +
			0.3*float64(skillMatch) +
			0.2*float64(recentActivity)

		candidates = append(candidates, &Candidate{
			UserID:             u.ID,
			DisplayName:        u.DisplayName,
			ReputationScore:    u.ReputationScore,
			ActiveProjectCount: u.ActiveProjectCount,
			SkillMatch:         skillMatch,
			DomainMatch:        domainMatch,
			RecentActivity:     recentActivity,
			RankingScore:       math.Round(score*10) / 10,
		})
	}

	// Stable sort keeps the pool's reputation-then-arrival order for ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RankingScore > candidates[j].RankingScore
	})

	if len(candidates) > s.cfg.RecommendationLimit {
		candidates = candidates[:s.cfg.RecommendationLimit]
	}

	s.toCache(ctx, userID, candidates)
	return candidates, nil
}

func (s *MatchingService) fromCache(ctx context.Context, userID uuid.UUID) []*Candidate {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, recommendationCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(err).Warn("recommendation cache read failed")
		}
		return nil
	}
	var candidates []*Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		s.log.WithError(err).Warn("recommendation cache entry corrupt")
		return nil
	}
	return candidates
}

func (s *MatchingService) toCache(ctx context.Context, userID uuid.UUID, candidates []*Candidate) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, recommendationCacheKey(userID), raw, recommendationCacheTTL).Err(); err != nil {
		s.log.WithError(err).Warn("recommendation cache write failed")
	}
}

func recommendationCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("recommendations:%s", userID)
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// jaccardPercent is |A∩B| / |A∪B| as a rounded integer percentage, with 0
// when both sets are empty.
func jaccardPercent(a, b map[uuid.UUID]struct{}) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return int(math.Round(100 * float64(intersection) / float64(union)))
}

func recentActivityScore(activeProjects int) int {
	score := 100 - 40*activeProjects
	if score < 0 {
		return 0
	}
	return score
}
