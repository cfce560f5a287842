package imgnorm

import (
	"bytes"
	"flag"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatFromExtension(t *testing.T) {
	if _, err := FormatFromExtension("Jpg"); err != nil {
		t.Fatal("jpg format want no error")
	}
	if _, err := FormatFromExtension("TIFF"); err != nil {
		t.Fatal("tiff format want no error")
	}
	if f, err := FormatFromExtension(".pdf"); err != nil || f != PDF {
		t.Fatalf("pdf format want no error, got %s %v", f, err)
	}
	if _, err := FormatFromExtension("txt"); err != ErrUnsupportedFormat {
		t.Fatal("txt format want error")
	}
	if f, err := FormatFromFilename("dir/IMG_0001.JPEG"); err != nil || f != JPEG {
		t.Fatalf("want JPEG, got %s %v", f, err)
	}
}

func TestTextVar(t *testing.T) {
	testCase1 := []struct {
		argument string
		format   Format
	}{
		{"Jpg", JPEG},
		{"TIFF", TIFF},
		{"pdf", PDF},
		{"txt", Format(-1)},
	}
	for _, tc := range testCase1 {
		f := flag.NewFlagSet("test", flag.ContinueOnError)
		f.SetOutput(io.Discard)
		var format Format
		f.TextVar(&format, "f", Format(-1), "")
		f.Parse(append([]string{"-f"}, tc.argument))
		if format != tc.format {
			t.Errorf("expected %s format; got %s", tc.format, format)
		}
	}
	testCase2 := []struct {
		argument    string
		compression TIFFCompression
	}{
		{"none", TIFFUncompressed},
		{"Deflate", TIFFDeflate},
		{"lzw", TIFFCompression(-1)},
	}
	for _, tc := range testCase2 {
		f := flag.NewFlagSet("test", flag.ContinueOnError)
		f.SetOutput(io.Discard)
		var compression TIFFCompression
		f.TextVar(&compression, "c", TIFFCompression(-1), "")
		f.Parse(append([]string{"-c"}, tc.argument))
		if compression != tc.compression {
			t.Errorf("expected %d compression; got %d", tc.compression, compression)
		}
	}
}

func TestEncode(t *testing.T) {
	testCase := []FormatOption{
		{Format: JPEG, EncodeOption: []EncodeOption{Quality(75)}},
		{Format: PNG, EncodeOption: []EncodeOption{PNGCompressionLevel(png.BestSpeed)}},
		{Format: GIF, EncodeOption: []EncodeOption{GIFNumColors(16)}},
		{Format: TIFF, EncodeOption: []EncodeOption{TIFFCompressionType(TIFFDeflate)}},
		{Format: TIFF, EncodeOption: []EncodeOption{TIFFCompressionType(TIFFUncompressed)}},
		{Format: BMP},
	}

	m0 := sample(64, 48)
	for _, tc := range testCase {
		var buf bytes.Buffer
		fo := &FormatOption{tc.Format, tc.EncodeOption}
		if err := fo.Encode(&buf, m0); err != nil {
			t.Fatal(formatExts[fo.Format], err)
		}

		m1, _, err := image.Decode(&buf)
		if err != nil {
			t.Fatal(formatExts[fo.Format], err)
		}

		if m0.Bounds() != m1.Bounds() {
			t.Fatalf("bounds differ: %v and %v", m0.Bounds(), m1.Bounds())
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, m0, &FormatOption{Format: PDF, EncodeOption: []EncodeOption{Quality(75)}}); err != nil {
		t.Fatal("pdf", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("pdf output has no header")
	}

	if err := (&FormatOption{Format: -1}).Encode(io.Discard, m0); err != ErrUnsupportedFormat {
		t.Fatal("encode unsupported format expect an error")
	}
}

func TestConvertExt(t *testing.T) {
	testCase := []struct {
		format Format
		input  string
		want   string
	}{
		{JPEG, "a/b.png", "a/b.jpg"},
		{TIFF, "photo.jpeg", "photo.tif"},
		{PDF, "noext", "noext.pdf"},
	}
	for _, tc := range testCase {
		if got := (&FormatOption{Format: tc.format}).ConvertExt(tc.input); got != tc.want {
			t.Errorf("%s: want %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestSave(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.png")
	if err := Save(output, sample(8, 8), &FormatOption{Format: PNG}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	img, err := NormalizeBytes(b, 1080)
	if err != nil {
		t.Fatal(err)
	}
	compare(t, sample(8, 8), img)

	if err := Save(filepath.Join(t.TempDir(), "missing", "out.png"), sample(1, 1), &FormatOption{}); err == nil {
		t.Error("save into missing directory expect an error")
	}
}
