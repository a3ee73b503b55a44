package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trivernis/pngmsg/pngdata"
)

// writeTestImage writes a png with an IHDR and IEND chunk and returns its path
func writeTestImage(t *testing.T) string {
	t.Helper()
	ihdr, _ := pngdata.ParseChunkType("IHDR")
	iend, _ := pngdata.ParseChunkType("IEND")
	png := pngdata.NewPng(
		pngdata.NewChunk(ihdr, []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}),
		pngdata.NewChunk(iend, nil),
	)
	path := filepath.Join(t.TempDir(), "image.png")
	if err := png.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func withPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPassword
	readPassword = func(string) ([]byte, error) {
		return []byte(password), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(args, &stdout)
	return stdout.String(), err
}

func chunkTypes(t *testing.T, path string) []string {
	t.Helper()
	png, err := pngdata.LoadPng(path)
	if err != nil {
		t.Fatalf("LoadPng(%s): %v", path, err)
	}
	var types []string
	for _, c := range png.Chunks() {
		types = append(types, c.Type().String())
	}
	return types
}

func TestEncodeDecodeRemove(t *testing.T) {
	image := writeTestImage(t)

	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "teSt", "-message", "hello"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,teSt,IEND"; got != want {
		t.Errorf("chunks = %s, want %s", got, want)
	}

	out, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("decode output = %q, want %q", out, "hello\n")
	}

	out, err = runCommand(t, "remove", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.HasPrefix(out, "hello\n") {
		t.Errorf("remove output = %q, should start with the message", out)
	}
	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,IEND"; got != want {
		t.Errorf("chunks after remove = %s, want %s", got, want)
	}

	out, err = runCommand(t, "decode", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("decode of missing chunk should not fail: %v", err)
	}
	if !strings.Contains(out, "No chunk found with type teSt") {
		t.Errorf("decode output = %q", out)
	}
}

func TestDecodeFirstMessageOfType(t *testing.T) {
	image := writeTestImage(t)
	for _, message := range []string{"hello", "world"} {
		if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "teSt", "-message", message); err != nil {
			t.Fatalf("encode %q: %v", message, err)
		}
	}
	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,teSt,teSt,IEND"; got != want {
		t.Errorf("chunks = %s, want %s", got, want)
	}

	out, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("decode output = %q, want %q", out, "hello\n")
	}

	out, err = runCommand(t, "decode", "-quiet", "-image", image, "-type", "teSt", "-all")
	if err != nil {
		t.Fatalf("decode -all: %v", err)
	}
	if out != "helloworld\n" {
		t.Errorf("decode -all output = %q, want %q", out, "helloworld\n")
	}

	out, err = runCommand(t, "remove", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.HasPrefix(out, "hello\n") {
		t.Errorf("remove output = %q, should start with %q", out, "hello\n")
	}
	out, err = runCommand(t, "decode", "-quiet", "-image", image, "-type", "teSt")
	if err != nil {
		t.Fatalf("decode after remove: %v", err)
	}
	if out != "world\n" {
		t.Errorf("decode after remove output = %q, want %q", out, "world\n")
	}
}

func TestEncodeSuggestsAllForSplitMessages(t *testing.T) {
	image := writeTestImage(t)

	out, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "onEe", "-message", "short")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(out, "-all") {
		t.Errorf("single chunk encode output mentions -all: %q", out)
	}

	out, err = runCommand(t, "encode", "-quiet", "-image", image, "-type", "spLt", "-message", "a longer message", "-chunk-size", "4")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(out, "Pass -all to decode and remove") {
		t.Errorf("split encode output = %q, should point to -all", out)
	}
}

func TestEncodeToOtherOutput(t *testing.T) {
	image := writeTestImage(t)
	before, _ := os.ReadFile(image)
	output := filepath.Join(t.TempDir(), "out.png")

	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-out", output, "-type", "ruSt", "-message", "secret"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	after, _ := os.ReadFile(image)
	if !bytes.Equal(before, after) {
		t.Error("input image was modified although -out was given")
	}
	if got, want := strings.Join(chunkTypes(t, output), ","), "IHDR,ruSt,IEND"; got != want {
		t.Errorf("chunks = %s, want %s", got, want)
	}
}

func TestEncodeSplitsIntoChunks(t *testing.T) {
	image := writeTestImage(t)
	message := strings.Repeat("0123456789", 5)

	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "spLt", "-message", message, "-chunk-size", "16"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,spLt,spLt,spLt,spLt,IEND"; got != want {
		t.Errorf("chunks = %s, want %s", got, want)
	}

	out, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "spLt", "-all")
	if err != nil {
		t.Fatalf("decode -all: %v", err)
	}
	if out != message+"\n" {
		t.Errorf("decode -all output = %q, want %q", out, message+"\n")
	}

	out, err = runCommand(t, "decode", "-quiet", "-image", image, "-type", "spLt")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != message[:16]+"\n" {
		t.Errorf("decode output = %q, want first chunk %q", out, message[:16]+"\n")
	}

	if _, err := runCommand(t, "remove", "-quiet", "-image", image, "-type", "spLt", "-all"); err != nil {
		t.Fatalf("remove -all: %v", err)
	}
	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,IEND"; got != want {
		t.Errorf("chunks after remove -all = %s, want %s", got, want)
	}
}

func TestEncodeFromFileWithEncryption(t *testing.T) {
	withPassword(t, "hunter2")
	image := writeTestImage(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "input.bin")
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 'd', 'a', 't', 'a'}
	if err := os.WriteFile(input, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "crPt", "-in", input, "-encrypt", "-chunk-size", "20"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	png, err := pngdata.LoadPng(image)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range png.ChunksByType("crPt") {
		if bytes.Contains(c.Data(), []byte("data")) {
			t.Error("plain text found in encrypted chunk")
		}
	}

	decoded := filepath.Join(dir, "decoded.bin")
	if _, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "crPt", "-all", "-decrypt", "-out", decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := os.ReadFile(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("decoded = %v, want %v", got, payload)
	}

	withPassword(t, "wrong")
	if _, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "crPt", "-all", "-decrypt", "-out", decoded); !errors.Is(err, errDecrypt) {
		t.Errorf("decode with wrong password error = %v, want %v", err, errDecrypt)
	}
}

func TestDecodeBinaryToStdout(t *testing.T) {
	image := writeTestImage(t)
	input := filepath.Join(t.TempDir(), "input.bin")
	if err := os.WriteFile(input, []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "biNa", "-in", input); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := runCommand(t, "decode", "-quiet", "-image", image, "-type", "biNa"); !errors.Is(err, pngdata.ErrInvalidUTF8) {
		t.Errorf("decode error = %v, want %v", err, pngdata.ErrInvalidUTF8)
	}
}

func TestCommandErrors(t *testing.T) {
	image := writeTestImage(t)
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not a png at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{
			name:  "no command",
			args:  nil,
			check: func(err error) bool { return errors.Is(err, errUsage) },
		},
		{
			name:  "unknown command",
			args:  []string{"explode"},
			check: func(err error) bool { return errors.Is(err, errUsage) },
		},
		{
			name:  "invalid chunk type",
			args:  []string{"encode", "-quiet", "-image", image, "-type", "Ru1t", "-message", "x"},
			check: pngdata.IsInvalidChunkType,
		},
		{
			name:  "chunk type too long",
			args:  []string{"decode", "-quiet", "-image", image, "-type", "RuStY"},
			check: pngdata.IsInvalidChunkType,
		},
		{
			name:  "zero chunk size",
			args:  []string{"encode", "-quiet", "-image", image, "-type", "teSt", "-message", "x", "-chunk-size", "0"},
			check: func(err error) bool { return errors.Is(err, errUsage) },
		},
		{
			name:  "message and input",
			args:  []string{"encode", "-quiet", "-image", image, "-type", "teSt", "-message", "x", "-in", image},
			check: func(err error) bool { return errors.Is(err, errUsage) },
		},
		{
			name:  "remove missing chunk",
			args:  []string{"remove", "-quiet", "-image", image, "-type", "teSt"},
			check: pngdata.IsNotFound,
		},
		{
			name:  "not a png",
			args:  []string{"print", "-image", garbage},
			check: func(err error) bool { return errors.Is(err, pngdata.ErrBadSignature) },
		},
		{
			name:  "missing file",
			args:  []string{"print", "-image", filepath.Join(t.TempDir(), "missing.png")},
			check: func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, tt.args...)
			if err == nil || !tt.check(err) {
				t.Errorf("run(%v) error = %v", tt.args, err)
			}
		})
	}

	if got, want := strings.Join(chunkTypes(t, image), ","), "IHDR,IEND"; got != want {
		t.Errorf("failed commands modified the image: chunks = %s, want %s", got, want)
	}
}

func TestPrintCommand(t *testing.T) {
	image := writeTestImage(t)
	if _, err := runCommand(t, "encode", "-quiet", "-image", image, "-type", "RuSt", "-message", "x"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := runCommand(t, "print", "-image", image, "-verbose")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"3 chunks", "IHDR", "RuSt", "IEND", "is safe to copy: true", "is public: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("print output missing %q:\n%s", want, out)
		}
	}
}
