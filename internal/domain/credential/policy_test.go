package credential_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/audit-portal-api/internal/domain"
	"github.com/jhoicas/audit-portal-api/internal/domain/credential"
)

func TestValidateStrength(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Aa1!aaaa", true},
		{"Password1", true},          // minúscula + mayúscula + dígito
		{"пароль-Тест", true},        // cirílico: minúscula + mayúscula + símbolo
		{"alllowercase", false},      // una sola clase
		{"lowercase123", false},      // dos clases
		{"Aa1!", false},              // demasiado corta
		{"ABCDEFG1", false},          // dos clases
		{"Aa1 aaaa", false},          // el espacio no cuenta como símbolo
		{"漢字漢字aaaa1", false},         // letras sin caja no cuentan como símbolo
		{"ᠮᠣᠩᠭᠣᠯaa1!", true},         // minúscula + dígito + símbolo
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			err := credential.ValidateStrength(tc.password)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrWeakPassword)
		})
	}
}

func TestValidateStrength_CuentaRunasNoBytes(t *testing.T) {
	// 7 runas cirílicas ocupan 14 bytes: sigue siendo corta.
	assert.ErrorIs(t, credential.ValidateStrength("Ббб1!бб"), domain.ErrWeakPassword)
}

func TestValidateStrength_LimiteDeBytes(t *testing.T) {
	atLimit := "Aa1!" + strings.Repeat("x", credential.MaxBytes-4)
	assert.NoError(t, credential.ValidateStrength(atLimit))
	assert.ErrorIs(t, credential.ValidateStrength(atLimit+"x"), domain.ErrWeakPassword)

	// 37 runas cirílicas son 74 bytes.
	assert.ErrorIs(t, credential.ValidateStrength("Aa1!"+strings.Repeat("б", 37)), domain.ErrWeakPassword)
}

func TestValidateTemporary(t *testing.T) {
	assert.NoError(t, credential.ValidateTemporary("temporal"))
	assert.ErrorIs(t, credential.ValidateTemporary("corta"), domain.ErrWeakPassword)
	assert.ErrorIs(t, credential.ValidateTemporary(strings.Repeat("t", credential.MaxBytes+1)), domain.ErrWeakPassword)
}

func TestNormalizeIdentity(t *testing.T) {
	assert.Equal(t, "bat", credential.NormalizeIdentity("  bat \n"))
	// "й" descompuesto (и + breve) se compone en NFC.
	assert.Equal(t, "\u0439", credential.NormalizeIdentity("\u0438\u0306"))
}
