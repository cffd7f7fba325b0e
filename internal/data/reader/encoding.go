package reader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported encoding names.
const (
	EncodingUTF8        = "utf-8"
	EncodingGBK         = "gbk"
	EncodingWindows1252 = "windows-1252"
	EncodingUTF16       = "utf-16"
)

// Encodings lists the accepted --encoding values.
var Encodings = []string{EncodingUTF8, EncodingGBK, EncodingWindows1252, EncodingUTF16}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf8", EncodingUTF8, "utf-8-sig":
		return unicode.UTF8, nil
	case EncodingGBK, "gb2312", "cp936":
		return simplifiedchinese.GBK, nil
	case EncodingWindows1252, "cp1252", "latin1":
		return charmap.Windows1252, nil
	case EncodingUTF16, "utf16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	}
	return nil, fmt.Errorf("unsupported encoding '%s': must be one of %s", name, strings.Join(Encodings, ", "))
}

// decode wraps r so it yields UTF-8. A leading BOM always wins over the
// configured encoding.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
