package services

import (
	"context"

	"prodcatalog/internal/domain"
	"prodcatalog/internal/repos"
)

type ProfileService struct {
	Users *repos.UserRepo
}

func NewProfileService(users *repos.UserRepo) *ProfileService {
	return &ProfileService{Users: users}
}

// UserProfile returns the user with every rating they gave, best first.
func (s *ProfileService) UserProfile(ctx context.Context, userID int64) (domain.Profile, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	rs, err := s.Users.Ratings(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{User: u, TotalRatings: len(rs), Ratings: rs}, nil
}
