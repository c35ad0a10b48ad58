package service

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Supported upload media types. Rejecting anything else is the HTTP
// boundary's job; the normalizer assumes one of these.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeJPG  = "image/jpg"
	MediaTypePNG  = "image/png"
)

// pdfRenderDPI is the fixed rasterization resolution for PDF pages. It is a
// quality/cost trade-off for the vision model and must stay reproducible
// across runs.
const pdfRenderDPI = 200

const jpegQuality = 90

// PageImage is one renderable page of an uploaded document, held in memory
// so it can be re-read by later pipeline stages.
type PageImage struct {
	Data      []byte
	MediaType string
}

// NormalizerService converts an uploaded file into an ordered sequence of
// page images. PDFs are rasterized page by page with go-fitz; raster input
// passes through unchanged.
type NormalizerService struct {
	logger *zap.Logger
}

func NewNormalizerService(logger *zap.Logger) *NormalizerService {
	return &NormalizerService{logger: logger}
}

// Normalize returns at least one page image for the given file. A PDF the
// rasterizer cannot read is a fatal error for the caller; there is no
// recovery path for a document that cannot be rendered.
func (s *NormalizerService) Normalize(fileContent []byte, mediaType string) ([]PageImage, error) {
	if mediaType != MediaTypePDF {
		// Already a renderable image, no re-encoding needed.
		return []PageImage{{Data: fileContent, MediaType: mediaType}}, nil
	}

	doc, err := fitz.NewFromMemory(fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]PageImage, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, pdfRenderDPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render PDF page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode PDF page %d: %w", i+1, err)
		}

		pages = append(pages, PageImage{Data: buf.Bytes(), MediaType: MediaTypeJPEG})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no renderable pages in PDF")
	}

	s.logger.Info("Document normalized",
		zap.String("media_type", mediaType),
		zap.Int("pages", len(pages)),
	)

	return pages, nil
}
