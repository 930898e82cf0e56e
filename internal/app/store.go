package app

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"

	"parkride/internal/config"
	"parkride/internal/repository"
	"parkride/internal/repository/mongodb"
	"parkride/internal/repository/postgres"
)

// Repositories is the persistence set the services are built on.
type Repositories struct {
	Facilities repository.FacilityRepository
	Bookings   repository.BookingRepository
	Payments   repository.PaymentRepository

	close func(context.Context) error
}

// Close releases the underlying store connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// OpenRepositories connects to the store selected by cfg.Store.Driver.
func OpenRepositories(ctx context.Context, cfg *config.Config, nrApp *newrelic.Application) (*Repositories, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := NewMongoDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Facilities: mongodb.NewFacilityRepository(db),
			Bookings:   mongodb.NewBookingRepository(db),
			Payments:   mongodb.NewPaymentRepository(db),
			close:      client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Facilities: postgres.NewFacilityRepository(db),
			Bookings:   postgres.NewBookingRepository(db),
			Payments:   postgres.NewPaymentRepository(db),
			close:      func(context.Context) error { return db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
