package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isLockNotAvailable verifica se o erro é 55P03 (lock_not_available), devolvido
// quando o lock_timeout da transação expira esperando o FOR UPDATE.
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03"
	}
	return false
}
