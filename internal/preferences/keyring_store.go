package preferences

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps the token in the operating system keyring under the application service name.
type KeyringStore struct {
	service string
}

// NewKeyringStore constructs a keyring-backed store.
func NewKeyringStore(applicationName string) *KeyringStore {
	return &KeyringStore{service: applicationName}
}

type keyringResult struct {
	value string
	err   error
}

// Load reads the token from the keyring.
func (store *KeyringStore) Load(executionContext context.Context) (string, bool, error) {
	result, waitError := awaitKeyring(executionContext, func() keyringResult {
		token, getError := keyring.Get(store.service, TokenKeyConstant)
		return keyringResult{value: token, err: getError}
	})
	if waitError != nil {
		return "", false, StoreError{Operation: operationLoad, Cause: waitError}
	}
	if errors.Is(result.err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if result.err != nil {
		return "", false, StoreError{Operation: operationLoad, Cause: result.err}
	}
	return result.value, len(result.value) > 0, nil
}

// Save writes the token to the keyring.
func (store *KeyringStore) Save(executionContext context.Context, token string) error {
	result, waitError := awaitKeyring(executionContext, func() keyringResult {
		return keyringResult{err: keyring.Set(store.service, TokenKeyConstant, token)}
	})
	if waitError != nil {
		return StoreError{Operation: operationSave, Cause: waitError}
	}
	if result.err != nil {
		return StoreError{Operation: operationSave, Cause: result.err}
	}
	return nil
}

// Delete removes the token from the keyring.
func (store *KeyringStore) Delete(executionContext context.Context) (bool, error) {
	result, waitError := awaitKeyring(executionContext, func() keyringResult {
		return keyringResult{err: keyring.Delete(store.service, TokenKeyConstant)}
	})
	if waitError != nil {
		return false, StoreError{Operation: operationDelete, Cause: waitError}
	}
	if errors.Is(result.err, keyring.ErrNotFound) {
		return false, nil
	}
	if result.err != nil {
		return false, StoreError{Operation: operationDelete, Cause: result.err}
	}
	return true, nil
}

// awaitKeyring runs a keyring call off the caller's goroutine; some platforms block on an unlock dialog.
func awaitKeyring(executionContext context.Context, call func() keyringResult) (keyringResult, error) {
	resultChannel := make(chan keyringResult, 1)
	go func() {
		resultChannel <- call()
	}()

	select {
	case result := <-resultChannel:
		return result, nil
	case <-executionContext.Done():
		return keyringResult{}, executionContext.Err()
	}
}
