// Package validation содержит функции валидации входных данных.
package validation

import "unicode"

// IsValidMobile проверяет корректность номера мобильного телефона:
// допускается необязательный ведущий "+", далее только цифры, длина от 8
// до 15 знаков.
func IsValidMobile(number string) bool {
	if number == "" {
		return false
	}

	digits := number
	if digits[0] == '+' {
		digits = digits[1:]
	}

	if len(digits) < 8 || len(digits) > 15 {
		return false
	}

	for _, ch := range digits {
		if !unicode.IsDigit(ch) {
			return false
		}
	}

	return true
}
