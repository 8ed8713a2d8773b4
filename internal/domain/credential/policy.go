// Package credential contiene las reglas de dominio sobre contraseñas y la
// normalización de identificadores de usuario.
package credential

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/audit-portal-api/internal/domain"
)

const (
	// MinLength longitud mínima (en caracteres) de cualquier contraseña.
	MinLength = 8
	// MinClasses clases de caracteres distintas exigidas (minúscula, mayúscula, dígito, símbolo).
	MinClasses = 3
	// MaxBytes bcrypt no admite más de 72 bytes.
	MaxBytes = 72
)

// ValidateStrength exige longitud ≥ MinLength, como mucho MaxBytes bytes y al menos
// MinClasses clases de caracteres. El error envuelve domain.ErrWeakPassword.
func ValidateStrength(password string) error {
	if utf8.RuneCountInString(password) < MinLength {
		return fmt.Errorf("%w: mínimo %d caracteres", domain.ErrWeakPassword, MinLength)
	}
	if err := checkMaxBytes(password); err != nil {
		return err
	}
	if n := classes(password); n < MinClasses {
		return fmt.Errorf("%w: usa al menos %d de: minúsculas, mayúsculas, dígitos, símbolos", domain.ErrWeakPassword, MinClasses)
	}
	return nil
}

// ValidateTemporary regla mínima para contraseñas temporales fijadas por un administrador.
func ValidateTemporary(password string) error {
	if utf8.RuneCountInString(password) < MinLength {
		return fmt.Errorf("%w: la contraseña temporal debe tener al menos %d caracteres", domain.ErrWeakPassword, MinLength)
	}
	return checkMaxBytes(password)
}

func checkMaxBytes(password string) error {
	if len(password) > MaxBytes {
		return fmt.Errorf("%w: máximo %d bytes", domain.ErrWeakPassword, MaxBytes)
	}
	return nil
}

// classes letras sin caja (CJK, escritura mongola) no suman ninguna clase.
func classes(s string) int {
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r), unicode.IsSpace(r):
		default:
			symbol = true
		}
	}
	n := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			n++
		}
	}
	return n
}

// NormalizeIdentity recorta espacios y aplica NFC para que el mismo nombre
// tecleado en distintos teclados (cirílico compuesto vs. descompuesto) coincida.
func NormalizeIdentity(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
