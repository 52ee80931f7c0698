package encoding

import (
	"errors"
	"io"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func TestNewReader_EUCKR(t *testing.T) {
	encoded, _, err := transform.String(korean.EUCKR.NewEncoder(), "usemtl 벽돌\n")
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	r, err := NewReader(strings.NewReader(encoded), "EUC-KR")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "usemtl 벽돌\n" {
		t.Errorf("got %q", got)
	}
}

func TestNewReader_Latin1(t *testing.T) {
	r, err := NewReader(strings.NewReader("usemtl caf\xe9"), "latin1")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, _ := io.ReadAll(r)
	if string(got) != "usemtl café" {
		t.Errorf("got %q", got)
	}
}

func TestNewReader_PassThrough(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8"} {
		src := strings.NewReader("v 1 2 3")
		r, err := NewReader(src, name)
		if err != nil {
			t.Fatalf("NewReader(%q): %v", name, err)
		}
		if r != src {
			t.Errorf("NewReader(%q) should return the original reader", name)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("klingon")
	if !errors.Is(err, ErrUnknownCharset) {
		t.Errorf("expected ErrUnknownCharset, got %v", err)
	}
}

func TestDecodeString(t *testing.T) {
	if got := DecodeString("caf\xe9", "windows-1252"); got != "café" {
		t.Errorf("DecodeString() = %q", got)
	}
	if got := DecodeString("plain", "nope"); got != "plain" {
		t.Errorf("unknown charset should return input, got %q", got)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if names[0] != "utf-8" {
		t.Errorf("first name = %q, want utf-8", names[0])
	}
	found := false
	for _, n := range names {
		if n == "euc-kr" {
			found = true
		}
	}
	if !found {
		t.Error("euc-kr missing from Names()")
	}
}
