// Package directory resolves customer IDs to directory records.
package directory

import (
	"context"
	"math/rand"
	"sort"

	"instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/models"
)

// Directory is the customer lookup collaborator consumed by the agents.
type Directory interface {
	CustomerByID(ctx context.Context, id string) (*models.Customer, error)
}

// Sampler is implemented by directories that can hand out a demo
// customer for conversations started without an explicit ID.
type Sampler interface {
	RandomCustomer() models.Customer
}

// InMemory is the seeded demo directory.
type InMemory struct {
	customers map[string]models.Customer
}

func NewInMemory() *InMemory {
	seed := []models.Customer{
		{ID: "CUST001", Name: "Rahul Sharma", Age: 32, City: "Mumbai", CreditScore: 780, CurrentLoans: 1, PreApprovedLimit: 600000, Email: "rahul.sharma@example.com", Phone: "+919820012345"},
		{ID: "CUST002", Name: "Priya Patel", Age: 28, City: "Ahmedabad", CreditScore: 720, CurrentLoans: 0, PreApprovedLimit: 300000, Email: "priya.patel@example.com", Phone: "+919726054321"},
		{ID: "CUST003", Name: "Amit Verma", Age: 41, City: "Delhi", CreditScore: 680, CurrentLoans: 2, PreApprovedLimit: 200000, Email: "amit.verma@example.com", Phone: "+919811098765"},
		{ID: "CUST004", Name: "Sneha Iyer", Age: 35, City: "Bengaluru", CreditScore: 810, CurrentLoans: 0, PreApprovedLimit: 800000, Email: "sneha.iyer@example.com", Phone: "+919845067890"},
		{ID: "CUST005", Name: "Vikram Singh", Age: 45, City: "Jaipur", CreditScore: 640, CurrentLoans: 3, PreApprovedLimit: 150000, Email: "vikram.singh@example.com", Phone: "+919829011223"},
	}

	customers := make(map[string]models.Customer, len(seed))
	for _, c := range seed {
		customers[c.ID] = c
	}
	return &InMemory{customers: customers}
}

func (d *InMemory) CustomerByID(_ context.Context, id string) (*models.Customer, error) {
	customer, ok := d.customers[id]
	if !ok {
		return nil, errors.NewCustomerNotFoundError(id)
	}
	return &customer, nil
}

// RandomCustomer picks one of the seeded demo records.
func (d *InMemory) RandomCustomer() models.Customer {
	ids := make([]string, 0, len(d.customers))
	for id := range d.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return d.customers[ids[rand.Intn(len(ids))]]
}
