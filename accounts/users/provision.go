package users

import (
	"context"
	"errors"
	"fmt"
)

// resolves a federated identity to a local user, creating or linking one on
// first sight. Lookup order: external UID, then an unlinked account with the
// same verified email, then a fresh record.
func FindOrProvision(ctx context.Context, store Store, ext ExternalIdentity) (*User, error) {
	if ext.UID == "" {
		return nil, fmt.Errorf("provision user: external uid is required")
	}

	user, err := store.FindByExternalUID(ctx, ext.UID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	if email := NormalizeEmail(ext.Email); email != "" {
		existing, err := store.FindByEmail(ctx, email)

		switch {
		case err == nil && existing.ExternalUID == "" && ext.EmailVerified:
			return store.AttachExternalUID(ctx, existing.ID, ext.UID)
		case err == nil:
			return nil, ErrConflict
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("provision user: %w", err)
		}
	}

	user, err = store.Create(ctx, NewUser{
		Email:       ext.Email,
		Name:        ext.Name,
		ExternalUID: ext.UID,
		PhotoURL:    ext.PhotoURL,
	})

	if errors.Is(err, ErrConflict) {
		// lost a race with a concurrent first sign-in. If no row carries our
		// UID, the email was taken by a different identity.
		user, err = store.FindByExternalUID(ctx, ext.UID)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrConflict
		}

		return user, err
	}

	return user, err
}
