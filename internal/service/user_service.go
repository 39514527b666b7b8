package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service/tokens"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const DefaultJWTTokenExpire = 24 * time.Hour

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	hasher         PasswordHasher
	jwtTokenSecret []byte
	jwtTokenExpire time.Duration
	// adminEmails адреса, владельцы которых получают роль администратора при регистрации или входе.
	adminEmails map[string]struct{}
}

func NewUserService(
	u uow.UOW,
	hasher PasswordHasher,
	jwtTokenSecret []byte,
	jwtTokenExpire time.Duration,
) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	if jwtTokenExpire <= 0 {
		jwtTokenExpire = DefaultJWTTokenExpire
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		hasher:         hasher,
		jwtTokenSecret: jwtTokenSecret,
		jwtTokenExpire: jwtTokenExpire,
	}, nil
}

// SetAdminEmails задает список адресов администраторов.
func (s *UserService) SetAdminEmails(emails []string) *UserService {
	s.adminEmails = make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if email = normalizeEmail(email); email != "" {
			s.adminEmails[email] = struct{}{}
		}
	}
	return s
}

func (s *UserService) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[email]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterUserArgs struct {
	Email        string
	Password     string
	FullName     string
	ReferralCode string
}

// Register создает юзера в базе данных. Если указан реферальный код, в той же транзакции создается
// приглашение в статусе pending. Возвращает 3 значения: созданный юзер, токен и ошибку.
//
// Ошибки: domain.ErrDuplicateKey если email занят, domain.ErrUnknownReferralCode если код приглашения
// не найден.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	password, hashErr := s.hasher.HashPassword(args.Password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	email := normalizeEmail(args.Email)
	role := domain.RoleCustomer
	if s.isAdminEmail(email) {
		role = domain.RoleAdmin
	}

	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, err := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}

		var referrer *domain.User
		if code := strings.TrimSpace(args.ReferralCode); code != "" {
			referrer, err = userRepo.FindUserByReferralCode(c, strings.ToUpper(code))
			if err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return domain.ErrUnknownReferralCode
				}
				return err //nolint:wrapcheck
			}
		}

		user, err = userRepo.CreateUser(c, repoargs.CreateUser{
			Email:        email,
			Password:     password,
			FullName:     args.FullName,
			Role:         role,
			ReferralCode: newReferralCode(),
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		if referrer == nil {
			return nil
		}
		referralRepo, err := uow.GetAs[ReferralRepository](tx, uow.RepositoryName(repoargs.ReferralRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		if _, err = referralRepo.Create(c, referrer.ID, user.ID); err != nil {
			return err //nolint:wrapcheck
		}
		return nil
	})
	if txErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", txErr)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, s.jwtTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", tokenErr)
	}
	return user, token, nil
}

// Login проверяет пару email/пароль и выдает токен. Если юзер не найден, возвращает domain.ErrRecordNotFound,
// если пароль неверный - domain.ErrPasswordMissMatch. Юзер из списка администраторов, зарегистрированный
// до попадания в список, получает роль администратора при входе.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if !s.hasher.ComparePassword(password, user.Password) {
		return nil, "", fmt.Errorf("login: %w", domain.ErrPasswordMissMatch)
	}
	if !user.IsAdmin() && s.isAdminEmail(user.Email) {
		if err = s.userRepo.SetRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, "", fmt.Errorf("login: %w", err)
		}
		user.Role = domain.RoleAdmin
	}
	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, s.jwtTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login: %w", tokenErr)
	}
	return user, token, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}
