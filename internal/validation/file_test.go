package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
)

// pngHeader is the PNG magic number followed by enough bytes for sniffing.
var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, err = part.Write(content)
	if err != nil {
		t.Fatalf("write part: %v", err)
	}
	err = writer.Close()
	if err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	err = req.ParseMultipartForm(1 << 20)
	if err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	return req.MultipartForm.File["file"][0]
}

func TestValidateFileAcceptsMatchingImage(t *testing.T) {
	header := makeFileHeader(t, "photo.png", pngHeader)

	err := ValidateFile(header, ImageConstraints)
	if err != nil {
		t.Errorf("ValidateFile(png) = %v", err)
	}
}

func TestValidateFileRejectsExtension(t *testing.T) {
	header := makeFileHeader(t, "script.exe", pngHeader)

	err := ValidateFile(header, ImageConstraints)
	if err == nil {
		t.Error("ValidateFile accepted .exe")
	}
}

func TestValidateFileRejectsSpoofedContent(t *testing.T) {
	// A text file renamed to .png must fail the magic-number check.
	header := makeFileHeader(t, "fake.png", []byte("just some plain text content here"))

	err := ValidateFile(header, ImageConstraints)
	if err == nil {
		t.Error("ValidateFile accepted text content as an image")
	}
}

func TestValidateFileRejectsOversize(t *testing.T) {
	tiny := FileConstraints{
		AllowedMimeTypes:  ImageConstraints.AllowedMimeTypes,
		AllowedExtensions: ImageConstraints.AllowedExtensions,
		MaxSize:           8,
	}
	header := makeFileHeader(t, "photo.png", pngHeader)

	err := ValidateFile(header, tiny)
	if err == nil {
		t.Error("ValidateFile accepted oversize file")
	}
}

func TestValidateFileMatchesAnyConstraint(t *testing.T) {
	header := makeFileHeader(t, "notes.txt", []byte("release notes"))

	err := ValidateFile(header, ImageConstraints, DocumentConstraints)
	if err != nil {
		t.Errorf("ValidateFile(txt, image|document) = %v", err)
	}
}
