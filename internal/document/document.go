// Package document loads the file to be searched into memory as UTF-8 text.
// Files in legacy encodings are transcoded, invalid UTF-8 is rejected, and
// HTML pages can be rendered to Markdown so that their visible text is what
// gets searched.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	// ErrRead is matched by every ReadError.
	ErrRead = errors.New("cannot read document")
	// ErrInvalidUTF8 is reported for content that is not valid UTF-8 after decoding.
	ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")
)

// ReadError reports a document that could not be opened, read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// Options controls how raw file bytes become searchable text.
type Options struct {
	// Encoding is a WHATWG encoding label such as "utf-8", "latin1" or
	// "shift_jis". Empty means UTF-8, except in HTML mode where a
	// <meta charset> declaration is honoured first.
	Encoding string
	// HTML renders the document to Markdown before it is searched.
	HTML bool
}

// Load reads the whole file at path and returns its text.
func Load(path string, opts Options) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	return Decode(path, raw, opts)
}

// Decode turns raw document bytes into text. name is only used in errors.
func Decode(name string, raw []byte, opts Options) (string, error) {
	enc, err := resolveEncoding(raw, opts)
	if err != nil {
		return "", &ReadError{Path: name, Err: fmt.Errorf("%s: %w", name, err)}
	}

	text := raw
	if enc != nil {
		text, err = decodeWithEncoding(raw, enc)
		if err != nil {
			return "", &ReadError{Path: name, Err: fmt.Errorf("%s: failed to decode: %w", name, err)}
		}
	}

	if !utf8.Valid(text) {
		return "", &ReadError{Path: name, Err: fmt.Errorf("%s: %w", name, ErrInvalidUTF8)}
	}

	if !opts.HTML {
		return string(text), nil
	}

	rendered, err := RenderHTML(string(text))
	if err != nil {
		return "", &ReadError{Path: name, Err: fmt.Errorf("%s: %w", name, err)}
	}
	return rendered, nil
}

// resolveEncoding picks the decoder for raw. A nil encoding means the bytes
// are already expected to be UTF-8 and are only validated.
func resolveEncoding(raw []byte, opts Options) (encoding.Encoding, error) {
	if opts.Encoding == "" {
		if opts.HTML {
			return getEncodingFromMeta(raw), nil
		}
		return nil, nil
	}

	enc, err := htmlindex.Get(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}
	return skipUTF8(enc), nil
}

// skipUTF8 maps UTF-8 to nil. The UTF-8 decoder would silently replace
// invalid sequences, which must be reported instead.
func skipUTF8(enc encoding.Encoding) encoding.Encoding {
	if name, err := htmlindex.Name(enc); err == nil && name == "utf-8" {
		return nil
	}
	return enc
}

// decodeWithEncoding decodes bytes using specified encoding.
func decodeWithEncoding(body []byte, enc encoding.Encoding) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())
	return io.ReadAll(reader)
}
