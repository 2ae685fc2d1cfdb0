package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Strategy is one candidate decoding attempt. Decode returns an error when
// the bytes are not acceptable under this strategy.
type Strategy struct {
	Name   string
	Decode func(data []byte) (string, error)
}

// Result carries the decoded text and which strategy produced it.
type Result struct {
	Text     string
	Encoding string
	// Lossy reports that the guaranteed final strategy ran and invalid
	// sequences were replaced rather than decoded.
	Lossy bool
}

// DefaultStrategies returns the candidate decoders in trial order. Latin-1
// accepts any byte stream, so in practice the chain terminates there; the
// later entries keep the full candidate set explicit for callers that
// build their own ordering.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "utf-8", Decode: decodeUTF8Strict},
		{Name: "latin-1", Decode: transformDecoder(charmap.ISO8859_1.NewDecoder())},
		{Name: "ascii", Decode: decodeASCIIStrict},
		{Name: "utf-16", Decode: decodeUTF16(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))},
		{Name: "utf-16le", Decode: decodeUTF16(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))},
		{Name: "utf-16be", Decode: decodeUTF16(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))},
	}
}

// Decode tries the default strategies in order and falls back to a lossy
// UTF-8 decode that substitutes invalid sequences. It never fails.
func Decode(data []byte) Result {
	return DecodeWith(DefaultStrategies(), data)
}

// DecodeWith tries each strategy in order, accepting the first success.
// When every candidate rejects the input, the bytes are decoded as UTF-8
// with invalid sequences replaced by U+FFFD.
func DecodeWith(strategies []Strategy, data []byte) Result {
	for _, strategy := range strategies {
		text, err := strategy.Decode(data)
		if err != nil {
			continue
		}
		return Result{Text: text, Encoding: strategy.Name}
	}
	return Result{
		Text:     strings.ToValidUTF8(string(data), string(utf8.RuneError)),
		Encoding: "utf-8-lossy",
		Lossy:    true,
	}
}

func decodeUTF8Strict(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid utf-8 sequence")
	}
	return string(data), nil
}

func decodeASCIIStrict(data []byte) (string, error) {
	for i, b := range data {
		if b > 0x7f {
			return "", fmt.Errorf("non-ascii byte 0x%02x at offset %d", b, i)
		}
	}
	return string(data), nil
}

func transformDecoder(dec *encoding.Decoder) func([]byte) (string, error) {
	return func(data []byte) (string, error) {
		out, err := dec.Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func decodeUTF16(enc encoding.Encoding) func([]byte) (string, error) {
	decode := transformDecoder(enc.NewDecoder())
	return func(data []byte) (string, error) {
		if len(data)%2 != 0 {
			return "", fmt.Errorf("utf-16 input has odd length %d", len(data))
		}
		return decode(data)
	}
}
