package textenc_test

import (
	"strings"
	"testing"

	"pcbwatch/internal/textenc"
)

func TestDecodeValidUTF8(t *testing.T) {
	res := textenc.Decode([]byte("PCB0012 — inspected"))
	if res.Encoding != "utf-8" {
		t.Fatalf("expected utf-8, got %q", res.Encoding)
	}
	if res.Lossy {
		t.Fatal("clean utf-8 must not be lossy")
	}
	if !strings.Contains(res.Text, "PCB0012") {
		t.Fatalf("decoded text mangled: %q", res.Text)
	}
}

func TestDecodeHighBytesFallThroughToLatin1(t *testing.T) {
	// 0xE9 alone is invalid UTF-8 but a plain é in Latin-1.
	res := textenc.Decode([]byte{'P', 'C', 'B', '9', 0xE9})
	if res.Encoding != "latin-1" {
		t.Fatalf("expected latin-1, got %q", res.Encoding)
	}
	if !strings.HasPrefix(res.Text, "PCB9") {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if !strings.ContainsRune(res.Text, 'é') {
		t.Fatalf("latin-1 byte not mapped: %q", res.Text)
	}
}

func TestDecodeWithUTF16(t *testing.T) {
	// "PCB7" as UTF-16LE with BOM.
	data := []byte{0xFF, 0xFE, 'P', 0, 'C', 0, 'B', 0, '7', 0}
	strategies := []textenc.Strategy{
		textenc.DefaultStrategies()[0], // utf-8
		textenc.DefaultStrategies()[3], // utf-16
	}
	res := textenc.DecodeWith(strategies, data)
	if res.Encoding != "utf-16" {
		t.Fatalf("expected utf-16, got %q", res.Encoding)
	}
	if res.Text != "PCB7" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestDecodeWithExhaustedStrategiesIsLossyNotFatal(t *testing.T) {
	strict := []textenc.Strategy{
		textenc.DefaultStrategies()[0], // utf-8
		textenc.DefaultStrategies()[2], // ascii
	}
	res := textenc.DecodeWith(strict, []byte{0xFF, 0xFE, 0xFD})
	if !res.Lossy {
		t.Fatal("expected lossy fallback")
	}
	if res.Encoding != "utf-8-lossy" {
		t.Fatalf("unexpected encoding label: %q", res.Encoding)
	}
	if res.Text == "" {
		t.Fatal("fallback must still produce text")
	}
}

func TestDecodeNeverFailsOnAnyBytes(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0x00},
		{0xFF},
		{0xFF, 0xFE, 0x00},
		[]byte("PCB0001\xffPCB0002"),
	}
	for _, input := range inputs {
		res := textenc.Decode(input)
		if res.Encoding == "" {
			t.Fatalf("no encoding reported for %v", input)
		}
	}
}

func TestDecodeOddLengthRejectsUTF16(t *testing.T) {
	utf16 := textenc.DefaultStrategies()[3]
	if _, err := utf16.Decode([]byte{0xFF, 0xFE, 'P'}); err == nil {
		t.Fatal("expected odd-length error")
	}
}
