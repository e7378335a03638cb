// Package ocr finds text watermarks with the Tesseract OCR engine.
//
// Tesseract (via gosseract/v2) reports word or block bounding boxes. These
// are padded, clamped to the image and returned as rectangles that can be
// passed straight to a watermark removal. Filtering words by content lets a
// caller target a known watermark ("© example.com") without touching other
// text in the picture.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// The default language is English ("eng"). Chinese watermarks need
// "chi_sim" or "chi_tra".
//
// # Performance Considerations
//
// OCR is computationally expensive. Block-level detection (Options.Blocks)
// is faster than word-level detection but cannot filter by content. For a
// quick, dependency-free guess use the detection package instead.
//
// # Error Handling
//
// Image load failures wrap imaging.ErrLoad. Tesseract errors (missing
// language data, initialization failures) are returned wrapped with context.
package ocr
