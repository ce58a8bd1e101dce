// Package hierarchy derives parent/child information from cost-center codes.
//
// A cost-center code is an 11-digit, zero-padded numeric string. The first 8
// digits identify the parent installation and the 9th digit the asset class.
// Every function here is total: malformed codes are accepted as-is and
// validation is left to the reference store.
package hierarchy

import "strings"

// CodeLength is the fixed width of a cost-center code.
const CodeLength = 11

// ParentLength is the width of a parent installation code.
const ParentLength = 8

// UnknownClassName is returned for class digits outside the 0-9 map.
const UnknownClassName = "Desconhecido"

var classNames = map[byte]string{
	'0': "Instalação Principal",
	'1': "Gasoduto",
	'2': "Faixa",
	'3': "Ramal",
	'4': "Base",
	'5': "ECOMP",
	'6': "Ponto de Entrada",
	'7': "Ponto de Saída",
	'8': "ERP",
	'9': "EDG",
}

// Normalize zero-pads a code to the fixed 11-digit width. Codes already at
// or beyond the fixed width are returned unchanged.
func Normalize(code string) string {
	if len(code) >= CodeLength {
		return code
	}
	return strings.Repeat("0", CodeLength-len(code)) + code
}

// ParentOf returns the parent installation code: the first 8 characters of
// the zero-padded code.
func ParentOf(code string) string {
	return Normalize(code)[:ParentLength]
}

// ClassDigitOf returns the 9th character of the zero-padded code. Codes of 8
// characters or fewer have no class digit and fall back to '0'.
func ClassDigitOf(code string) byte {
	if len(code) <= ParentLength {
		return '0'
	}
	return Normalize(code)[ParentLength]
}

// ClassNameOf maps the class digit to its asset class name.
func ClassNameOf(code string) string {
	name, ok := classNames[ClassDigitOf(code)]
	if !ok {
		return UnknownClassName
	}
	return name
}

// ClassName maps a single class digit to its asset class name.
func ClassName(digit byte) string {
	name, ok := classNames[digit]
	if !ok {
		return UnknownClassName
	}
	return name
}
