package repoargs

import "github.com/fsdevblog/groph-grocer/internal/domain"

type CreateUser struct {
	Email        string
	Password     string
	FullName     string
	Role         domain.RoleType
	ReferralCode string
}
