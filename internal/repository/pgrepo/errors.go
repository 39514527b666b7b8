package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/groph-grocer/internal/domain"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
	fkViolationCode     = "23503"
)

// convertErr приводит ошибку pgx к виду, принятому в слое репозитория: контекст операции,
// бизнес-ошибка из domain и исходное сообщение.
//   - pgx.ErrNoRows превращается в domain.ErrRecordNotFound;
//   - нарушение уникальности - domain.ErrDuplicateKey;
//   - нарушение check/foreign key ограничений - domain.ErrConstraint;
//   - все остальное - domain.ErrUnknown.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case checkViolationCode, fkViolationCode:
			errType = domain.ErrConstraint
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
