package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSMTPPassword(t *testing.T) {
	keyring.MockInit()

	pw, err := SMTPPassword("bot@example.com", "from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)

	pw, err = SMTPPassword("bot@example.com", "")
	require.NoError(t, err)
	assert.Empty(t, pw)

	require.NoError(t, SetSMTPPassword("bot@example.com", "app-password"))
	pw, err = SMTPPassword("bot@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "app-password", pw)

	assert.Error(t, SetSMTPPassword(" ", "x"))
}
