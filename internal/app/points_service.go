package app

import (
	"context"
	"sort"
	"sync"

	"taskboard/internal/domain"
)

// rankingWorkers bounds the concurrent per-user point computations when
// building the leaderboard.
const rankingWorkers = 8

// PointsService computes derived point totals and the ranking leaderboard.
// Totals are recomputed in full on every call; nothing is memoized, so a
// score can never go stale in storage.
type PointsService struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

// NewPointsService creates a PointsService backed by the given repositories.
func NewPointsService(users domain.UserRepository, projects domain.ProjectRepository, tasks domain.TaskRepository) *PointsService {
	return &PointsService{users: users, projects: projects, tasks: tasks}
}

// Ranking is one leaderboard row.
type Ranking struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

// CalculateUserPoints sums the point values of completed tasks across all
// projects the user participates in. Tasks are fetched with one batched
// query over the project ids rather than one round trip per project.
func (s *PointsService) CalculateUserPoints(ctx context.Context, username string) (int, error) {
	ids, err := s.projects.ProjectIDsByParticipant(ctx, username)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tasks, err := s.tasks.ListByProjects(ctx, ids)
	if err != nil {
		return 0, err
	}
	return domain.CompletedPoints(tasks), nil
}

// Rankings computes points for every user and assigns ranks 1..N by
// descending points. Per-user totals are computed with bounded concurrent
// fan-out; the sort is stable, so users with equal points keep their
// incoming (user-list) order and the assignment is reproducible.
func (s *PointsService) Rankings(ctx context.Context) ([]Ranking, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	rankings := make([]Ranking, len(users))
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	sem := make(chan struct{}, rankingWorkers)
	for i, u := range users {
		wg.Add(1)
		go func(i int, username string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			points, err := s.CalculateUserPoints(ctx, username)
			rankings[i] = Ranking{Username: username, Points: points}
			errs[i] = err
		}(i, u.Username)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Points > rankings[j].Points
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

// RankFor locates the user's own row in the freshly computed leaderboard.
func (s *PointsService) RankFor(ctx context.Context, username string) (Ranking, []Ranking, error) {
	rankings, err := s.Rankings(ctx)
	if err != nil {
		return Ranking{}, nil, err
	}
	for _, r := range rankings {
		if r.Username == username {
			return r, rankings, nil
		}
	}
	return Ranking{}, rankings, ErrUserNotFound
}
