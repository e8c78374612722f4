package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutQR(t *testing.T) {
	dataURL, err := CheckoutQR("https://pm.link/abc123")
	require.NoError(t, err)

	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(dataURL, prefix))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	require.NoError(t, err)
	// Signature PNG
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
