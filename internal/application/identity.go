package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pocketcode/pocket-cli/internal/domain"
	"github.com/pocketcode/pocket-cli/internal/ports"
)

// ensureDeviceIdentity returns the persisted device id, generating and
// persisting one on first use. The id is immutable after that.
func ensureDeviceIdentity(ctx context.Context, store ports.IdentityStore) (domain.DeviceIdentity, error) {
	deviceID, err := store.Get(ctx, ports.KeyDeviceID)
	if err == nil && deviceID != "" {
		return domain.DeviceIdentity{DeviceID: deviceID}, nil
	}
	if err != nil && !errors.Is(err, ports.ErrKeyNotFound) {
		return domain.DeviceIdentity{}, fmt.Errorf("load device id: %w", err)
	}

	deviceID = uuid.NewString()
	if err := store.Put(ctx, ports.KeyDeviceID, deviceID); err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("persist device id: %w", err)
	}

	return domain.DeviceIdentity{DeviceID: deviceID}, nil
}
