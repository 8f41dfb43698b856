package sql

import "database/sql"

// GetTxFromProductRepo is a test helper to extract transaction from ProductRepository.
func GetTxFromProductRepo(repo *ProductRepository) *sql.Tx {
	return repo.txn
}

// AsUniqueConstraintError exposes asUniqueConstraintError to external tests.
func AsUniqueConstraintError(err error) error {
	if uniqueErr := asUniqueConstraintError(err); uniqueErr != nil {
		return uniqueErr
	}
	return nil
}
