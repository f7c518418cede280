package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/corey/ahotrie/internal/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Plain decodes text in any charset chardet recognizes to UTF-8. The content
// is otherwise left untouched so offsets refer to the file as written.
type Plain struct{}

// Extract implements ports.Extractor.
func (Plain) Extract(data []byte) (string, error) {
	return decodeText(data)
}

// decodeText returns data as UTF-8. Valid UTF-8 (minus a BOM) is returned
// as is; anything else goes through charset detection.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil {
		logger.Logger.Printf("charset detection failed: %v, assuming UTF-8", err)
		result = &chardet.Result{Charset: "UTF-8", Confidence: 100}
	}

	decoder := decoderFor(result.Charset)
	decoded, _, err := transform.Bytes(decoder.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", result.Charset, err)
	}
	logger.DebugLogger.Printf("decoded %d bytes as %s (confidence %d)", len(data), result.Charset, result.Confidence)
	return string(decoded), nil
}

// decoderFor maps a chardet charset name to a decoder. Unknown names decode
// as UTF-8, which replaces invalid bytes with U+FFFD.
func decoderFor(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "utf-8":
		return unicode.UTF8
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "gbk", "gb2312", "gb-18030", "gb18030":
		return simplifiedchinese.GB18030
	case "big5":
		return traditionalchinese.Big5
	}
	if enc, err := htmlindex.Get(charset); err == nil {
		return enc
	}
	logger.Logger.Printf("unsupported charset %s, decoding as UTF-8", charset)
	return unicode.UTF8
}
