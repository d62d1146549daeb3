package directory

import (
	"context"
	"database/sql"
	stderrors "errors"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/metrics"
	"instantcredit-agents/internal/models"
)

// Postgres backs the directory with a customers table, for deployments
// that load real records instead of the demo seed.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const customerByIDQuery = `
	SELECT id, name, age, city, credit_score, current_loans, pre_approved_limit,
	       COALESCE(email, ''), COALESCE(phone, '')
	FROM customers
	WHERE id = $1`

func (p *Postgres) CustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := p.db.QueryRowContext(ctx, customerByIDQuery, id).Scan(
		&c.ID, &c.Name, &c.Age, &c.City, &c.CreditScore, &c.CurrentLoans,
		&c.PreApprovedLimit, &c.Email, &c.Phone,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewCustomerNotFoundError(id)
		}
		metrics.CollaboratorFailures.WithLabelValues("customer-directory").Inc()
		return nil, errors.NewDirectoryLookupError(err)
	}
	return &c, nil
}
