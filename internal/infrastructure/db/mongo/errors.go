package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinicportal/portal/internal/core/domain"
)

// mapWriteError translates a write failure. A duplicate key on one of the
// partial unique indexes is the authoritative conflict signal.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return classify(err)
}

// classify marks network failures and timeouts as transient.
func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrStorageTransient, err)
	}
	return err
}
