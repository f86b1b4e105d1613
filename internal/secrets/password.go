package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const KeyringService = "career-scraper"

// SMTPPassword returns fromEnv when set, otherwise the keyring entry for account.
// A missing keyring entry yields "" and no error.
func SMTPPassword(account, fromEnv string) (string, error) {
	if strings.TrimSpace(fromEnv) != "" {
		return fromEnv, nil
	}
	if strings.TrimSpace(account) == "" {
		return "", nil
	}

	pw, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring lookup for %s: %w", account, err)
	}
	return pw, nil
}

func SetSMTPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Set(KeyringService, account, password)
}
