package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"jobboard/internal/users/models"
	id "jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(email string, role id.Role) *models.User {
	return &models.User{ID: id.UserID(uuid.New()), Name: "Test", Email: email, Role: role, IsActive: true}
}

func (s *UserStoreSuite) TestSaveAndFind() {
	s.Run("finds saved user", func() {
		u := s.newUser("ana@example.com", id.RoleCandidate)
		s.Require().NoError(s.store.Save(s.ctx, u))

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(id.RoleCandidate, found.Role)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned users are copies", func() {
		u := s.newUser("copy@example.com", id.RoleManager)
		s.Require().NoError(s.store.Save(s.ctx, u))
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		found.Role = id.RoleAdmin

		again, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(id.RoleManager, again.Role)
	})
}

func (s *UserStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("dup@example.com", id.RoleCandidate)))
	err := s.store.Save(s.ctx, s.newUser("DUP@example.com", id.RoleCandidate))
	s.ErrorIs(err, sentinel.ErrConflict)
}
