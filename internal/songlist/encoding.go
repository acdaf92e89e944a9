package songlist

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw songlist bytes to a string, detecting UTF-16
// byte-order marks before decoding. A leading BOM is stripped from the
// result. Bytes without a UTF-16 BOM are treated as UTF-8.
func decodeText(raw []byte) (string, error) {
	if hasUTF16BOM(raw) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode UTF-16 content: %w", err)
		}
		return string(out), nil
	}
	return string(bytes.TrimPrefix(raw, utf8BOM)), nil
}

func hasUTF16BOM(raw []byte) bool {
	if len(raw) < 2 {
		return false
	}
	le := raw[0] == 0xFF && raw[1] == 0xFE
	be := raw[0] == 0xFE && raw[1] == 0xFF
	return le || be
}

// splitLines splits decoded text on both Unix and Windows line endings.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}
