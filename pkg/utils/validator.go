package utils

import (
	"fmt"
	"strings"
)

// validator.go - валидация данных
//
// Назначение:
// Проверка корректности входных данных конфигурации.
//
// Функции:
// - ValidateAddress: проверка формата EVM-адреса (0x + 40 hex)
// - NormalizeAddress: приведение адреса к канонической форме (lowercase)
// - ValidateAddressList: проверка списка наблюдаемых адресов
//
// Возвращает error с описанием проблемы или nil

// ValidateAddress проверяет формат EVM-адреса аккаунта.
//
// Адрес должен иметь вид 0x + ровно 40 шестнадцатеричных символов.
// Checksum-регистр (EIP-55) не проверяется: info API бирж принимает
// адреса в любом регистре.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address is empty")
	}

	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return fmt.Errorf("address %q must start with 0x", address)
	}

	hexPart := address[2:]
	if len(hexPart) != 40 {
		return fmt.Errorf("address %q must contain 40 hex characters, got %d", address, len(hexPart))
	}

	for _, c := range hexPart {
		if !isHexDigit(c) {
			return fmt.Errorf("address %q contains non-hex character %q", address, c)
		}
	}

	return nil
}

// NormalizeAddress приводит адрес к канонической форме (lowercase).
//
// Нормализованный адрес используется как часть ключей state store,
// поэтому регистр должен быть детерминирован.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidateAddressList проверяет список наблюдаемых адресов.
//
// Параметры:
//   - addresses: список адресов (уже разобранный из конфигурации)
//
// Возвращает error если список пуст, содержит невалидный адрес
// или дубликаты (после нормализации).
func ValidateAddressList(addresses []string) error {
	if len(addresses) == 0 {
		return fmt.Errorf("watch list is empty")
	}

	seen := make(map[string]bool, len(addresses))
	for i, addr := range addresses {
		if err := ValidateAddress(addr); err != nil {
			return fmt.Errorf("address #%d: %w", i, err)
		}
		norm := NormalizeAddress(addr)
		if seen[norm] {
			return fmt.Errorf("duplicate address %s in watch list", norm)
		}
		seen[norm] = true
	}

	return nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
