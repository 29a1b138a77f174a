package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslations(t *testing.T) {
	bundle := &I18n{translations: make(map[string]map[string]string), defaultLang: "en"}
	require.NoError(t, bundle.LoadTranslations("./locales"))

	assert.Equal(t, "Client not found", bundle.T("en", KeyClientNotFound))
	assert.Equal(t, "找不到客戶", bundle.T("zh_TW", KeyClientNotFound))
	assert.Equal(t, "email is required", bundle.T("en", KeyValidationRequired, "email"))

	// unknown language falls back to the default
	assert.Equal(t, "Order not found", bundle.T("fr", KeyOrderNotFound))
	// unknown key is returned as-is
	assert.Equal(t, "no.such.key", bundle.T("en", "no.such.key"))
}

func TestLocalesDefineTheSameKeys(t *testing.T) {
	bundle := &I18n{translations: make(map[string]map[string]string), defaultLang: "en"}
	require.NoError(t, bundle.LoadTranslations("./locales"))

	en := bundle.translations["en"]
	zh := bundle.translations["zh_TW"]
	for key := range en {
		assert.Contains(t, zh, key)
	}
	assert.Len(t, zh, len(en))
}
