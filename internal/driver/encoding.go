package driver

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextEncoding is the byte encoding a file was read in. Rewritten files keep
// their encoding.
type TextEncoding uint8

const (
	EncodingUTF8 TextEncoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e TextEncoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffEncoding picks the encoding from a byte order mark.
func sniffEncoding(data []byte) TextEncoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

func (e TextEncoding) codec() encoding.Encoding {
	switch e {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return nil
	}
}

// DecodeText turns file bytes into text, stripping any byte order mark.
func DecodeText(data []byte) (string, TextEncoding, error) {
	enc := sniffEncoding(data)
	codec := enc.codec()
	if codec == nil {
		return string(data), enc, nil
	}
	out, _, err := transform.Bytes(codec.NewDecoder(), data)
	if err != nil {
		return "", enc, fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), enc, nil
}

// EncodeText turns text back into bytes in enc, restoring the byte order mark.
func EncodeText(text string, enc TextEncoding) ([]byte, error) {
	codec := enc.codec()
	if codec == nil {
		return []byte(text), nil
	}
	out, _, err := transform.Bytes(codec.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc, err)
	}
	return out, nil
}
