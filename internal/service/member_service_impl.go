package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
)

var (
	ErrMemberNameRequired = errors.New("member name is required")
	ErrMemberExists       = errors.New("member already exists")
)

type memberService struct {
	members  repository.MemberRepo
	observer UseCaseObserver
}

func NewMemberService(members repository.MemberRepo, observers ...UseCaseObserver) MemberService {
	return &memberService{members: members, observer: useCaseObserverOrNoop(observers)}
}

func (s *memberService) Add(ctx context.Context, m *domain.Member) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "member.add", start, err, nil)
	}()

	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return ErrMemberNameRequired
	}
	if m.Age != nil && *m.Age < 0 {
		return fmt.Errorf("member age must not be negative, got %d", *m.Age)
	}

	if _, err := s.members.GetByName(ctx, m.Name); err == nil {
		return fmt.Errorf("%q: %w", m.Name, ErrMemberExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if m.ID == "" {
		m.ID = repository.NewMemberID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return s.members.Create(ctx, m)
}

func (s *memberService) List(ctx context.Context) ([]domain.Member, error) {
	return s.members.List(ctx)
}

func (s *memberService) Remove(ctx context.Context, idOrName string) (m *domain.Member, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "member.remove", start, err, nil)
	}()

	m, err = s.members.GetByID(ctx, idOrName)
	if errors.Is(err, repository.ErrNotFound) {
		m, err = s.members.GetByName(ctx, idOrName)
	}
	if err != nil {
		return nil, err
	}
	if err := s.members.Delete(ctx, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}
