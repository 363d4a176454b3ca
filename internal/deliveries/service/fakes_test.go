package service

import (
	"context"
	"fmt"
	"time"

	agreementrepo "supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/deliveries/domain"
	"supply_portal_backend/internal/deliveries/repository"
	"supply_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory DeliveryRepository backing the service tests.
// BulkInsert honors the (agreement, date) uniqueness the database enforces.
type fakeRepo struct {
	eligible   []repository.Pair
	pairsByID  map[uuid.UUID]*repository.Pair
	existing   map[string]bool
	saved      []domain.Delivery
	saveErrFor map[uuid.UUID]error
	inserts    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pairsByID:  make(map[uuid.UUID]*repository.Pair),
		existing:   make(map[string]bool),
		saveErrFor: make(map[uuid.UUID]error),
	}
}

func dateKey(agreementID uuid.UUID, d time.Time) string {
	return fmt.Sprintf("%s|%s", agreementID, d.Format("2006-01-02"))
}

func (f *fakeRepo) FindByIDWithAgreement(_ context.Context, id uuid.UUID) (*repository.Pair, error) {
	pair, ok := f.pairsByID[id]
	if !ok {
		return nil, apperr.NotFound("delivery not found")
	}
	copied := *pair
	return &copied, nil
}

func (f *fakeRepo) FindEligibleForFallback(_ context.Context, _ time.Time) ([]repository.Pair, error) {
	out := make([]repository.Pair, len(f.eligible))
	copy(out, f.eligible)
	return out, nil
}

func (f *fakeRepo) Save(_ context.Context, d *domain.Delivery) error {
	if err := f.saveErrFor[d.ID]; err != nil {
		return err
	}
	f.saved = append(f.saved, *d)
	if pair, ok := f.pairsByID[d.ID]; ok {
		pair.Delivery = *d
	}
	return nil
}

func (f *fakeRepo) BulkInsert(_ context.Context, agreementID uuid.UUID, dates []time.Time, createdAt time.Time) ([]domain.Delivery, error) {
	f.inserts++
	var created []domain.Delivery
	for _, d := range dates {
		key := dateKey(agreementID, d)
		if f.existing[key] {
			continue
		}
		f.existing[key] = true
		created = append(created, domain.Delivery{
			ID:          uuid.New(),
			AgreementID: agreementID,
			ServiceDate: d,
			Status:      domain.StatusPending,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
	}
	return created, nil
}

func (f *fakeRepo) ListByAgreement(_ context.Context, agreementID uuid.UUID, from, to time.Time) ([]domain.Delivery, error) {
	return nil, nil
}

// fakeAgreements is an in-memory AgreementReader.
type fakeAgreements struct {
	byID map[uuid.UUID]*agreementrepo.Agreement
}

func newFakeAgreements(items ...*agreementrepo.Agreement) *fakeAgreements {
	f := &fakeAgreements{byID: make(map[uuid.UUID]*agreementrepo.Agreement)}
	for _, ag := range items {
		f.byID[ag.ID] = ag
	}
	return f
}

func (f *fakeAgreements) GetByID(_ context.Context, id uuid.UUID) (*agreementrepo.Agreement, error) {
	ag, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("agreement not found")
	}
	return ag, nil
}

func (f *fakeAgreements) ListActive(_ context.Context) ([]agreementrepo.Agreement, error) {
	var out []agreementrepo.Agreement
	for _, ag := range f.byID {
		if ag.Status == "ACTIVE" {
			out = append(out, *ag)
		}
	}
	return out, nil
}
