package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mozsearch/internal/engine"
	"mozsearch/internal/settings"
)

func TestCompressWritesHeader(t *testing.T) {
	src := []byte(strings.Repeat(`{"version":12}`, 50))
	out, err := MozLz4{}.Compress(src)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if !bytes.HasPrefix(out, Magic) {
		t.Fatalf("missing magic: %q", out[:8])
	}
	if got := int(out[8]) | int(out[9])<<8 | int(out[10])<<16 | int(out[11])<<24; got != len(src) {
		t.Fatalf("size header = %d, want %d", got, len(src))
	}
	if len(out) >= len(src) {
		t.Fatalf("repetitive input should shrink: %d >= %d", len(out), len(src))
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if !bytes.Equal(back, src) {
		t.Fatalf("decoded bytes differ from input")
	}
}

func TestCompressHandlesIncompressibleAndEmptyInput(t *testing.T) {
	for name, src := range map[string][]byte{
		"empty": {},
		"short": []byte("{}"),
		"noise": []byte("q8Zr!0aK#Lp2@vX9mN$wE5&tY7*uI3^oP1"),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := MozLz4{}.Compress(src)
			if err != nil {
				t.Fatalf("compress failed: %v", err)
			}
			back, err := Decompress(out)
			if err != nil {
				t.Fatalf("decompress failed: %v", err)
			}
			if !bytes.Equal(back, src) {
				t.Fatalf("decoded %q, want %q", back, src)
			}
		})
	}
}

func TestDecompressRejectsForeignData(t *testing.T) {
	if _, err := Decompress([]byte(`{"version":12}`)); err == nil || !strings.Contains(err.Error(), "LZ4_MAGIC") {
		t.Fatalf("expected LZ4_MAGIC error, got %v", err)
	}
	bad := append(append([]byte{}, Magic...), 0xff, 0xff, 0xff, 0xff)
	if _, err := Decompress(bad); err == nil || !strings.Contains(err.Error(), "LZ4_SIZE") {
		t.Fatalf("expected LZ4_SIZE error, got %v", err)
	}
}

func TestPackageRequiresCodec(t *testing.T) {
	p, err := settings.Compile(settings.Input{}, &engine.Compiler{})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	final, err := p.Finalize(settings.Hashes{})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if _, err := Package(nil, final); !errors.Is(err, ErrCodecUnavailable) {
		t.Fatalf("expected ErrCodecUnavailable, got %v", err)
	}
	out, err := Package(MozLz4{}, final)
	if err != nil {
		t.Fatalf("package failed: %v", err)
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if string(back) != `{"version":12,"engines":[],"metaData":{"useSavedOrder":false}}` {
		t.Fatalf("unexpected document: %s", back)
	}
}
