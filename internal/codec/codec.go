package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
)

// Token is the URL-safe representation of a document's content.
type Token string

// Scheme tags written in front of the payload, separated by tagSeparator.
const (
	SchemeDeflate   = "z1"
	SchemeBase64URL = "b1"

	// SchemeLegacy names the untagged formats written before tokens carried a tag.
	SchemeLegacy = "legacy"

	tagSeparator = "."
)

// MaxDecodedSize bounds the decoded content of a single token.
const MaxDecodedSize = 8 << 20

// tagShape matches a scheme tag such as "z1." whether or not it is known.
var tagShape = regexp.MustCompile(`^[a-z][0-9]+\.`)

// base64Shape matches payloads a legacy base64 writer could have produced,
// including the mangled forms decodeLegacyBase64 repairs.
var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/=_ -]*$`)

var (
	// ErrEmpty reports that no token was supplied. Callers treat it as "use the default".
	ErrEmpty = errors.New("token is empty")
	// ErrMalformed reports a token that no known scheme can decode.
	ErrMalformed = errors.New("token is malformed")
)

// DecodeError describes a failed Decode. Kind is ErrEmpty or ErrMalformed.
type DecodeError struct {
	Scheme string
	Kind   error
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Err == nil:
		return e.Kind.Error()
	case e.Scheme == "":
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Scheme, e.Err)
	}
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

type decodeFunc func(payload string, limit int) ([]byte, error)

type scheme struct {
	name   string
	decode decodeFunc
}

// Codec converts content to tokens and back. Tagged tokens are dispatched by
// tag; untagged tokens are tried against the legacy decoders in order.
type Codec struct {
	tagged  map[string]scheme
	legacy  []scheme
	maxSize int
}

// New returns a Codec with every known scheme registered.
func New() *Codec {
	return &Codec{
		tagged: map[string]scheme{
			SchemeDeflate:   {name: SchemeDeflate, decode: decodeDeflate},
			SchemeBase64URL: {name: SchemeBase64URL, decode: decodeBase64URL},
		},
		legacy: []scheme{
			{name: "legacy-base64", decode: decodeLegacyBase64},
			{name: "legacy-percent", decode: decodeLegacyPercent},
		},
		maxSize: MaxDecodedSize,
	}
}

var std = New()

// Encode encodes content with the default codec.
func Encode(content string) Token { return std.Encode(content) }

// Decode decodes tok with the default codec.
func Decode(tok Token) (string, error) { return std.Decode(tok) }

// SchemeOf reports which scheme the default codec would dispatch tok to.
func SchemeOf(tok Token) string { return std.SchemeOf(tok) }

// Encode returns the shorter of the compressed and uncompressed tokens for
// content, preferring the compressed one on a tie. The result only uses
// characters that need no escaping in a query string or fragment.
func (c *Codec) Encode(content string) Token {
	raw := []byte(content)
	plain := SchemeBase64URL + tagSeparator + base64.RawURLEncoding.EncodeToString(raw)

	packed, err := deflate(raw)
	if err != nil {
		return Token(plain)
	}
	compressed := SchemeDeflate + tagSeparator + base64.RawURLEncoding.EncodeToString(packed)
	if len(compressed) <= len(plain) {
		return Token(compressed)
	}
	return Token(plain)
}

// Decode returns the content carried by tok. Errors are always *DecodeError.
func (c *Codec) Decode(tok Token) (string, error) {
	s := string(tok)
	if s == "" {
		return "", &DecodeError{Kind: ErrEmpty}
	}

	if tag, payload, ok := strings.Cut(s, tagSeparator); ok {
		if sch, known := c.tagged[tag]; known {
			out, err := c.run(sch, payload)
			if err != nil {
				return "", &DecodeError{Scheme: sch.name, Kind: ErrMalformed, Err: err}
			}
			return out, nil
		}
		if tagShape.MatchString(s) {
			return "", &DecodeError{Scheme: tag, Kind: ErrMalformed, Err: fmt.Errorf("unknown scheme %q", tag)}
		}
	}

	var errs []error
	for _, sch := range c.legacy {
		out, err := c.run(sch, s)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", sch.name, err))
	}
	return "", &DecodeError{Scheme: SchemeLegacy, Kind: ErrMalformed, Err: errors.Join(errs...)}
}

// SchemeOf reports the scheme name tok dispatches to, or "" for an empty token.
// A tag this codec does not know is still reported by name.
func (c *Codec) SchemeOf(tok Token) string {
	s := string(tok)
	if s == "" {
		return ""
	}
	if tag, _, ok := strings.Cut(s, tagSeparator); ok {
		if _, known := c.tagged[tag]; known || tagShape.MatchString(s) {
			return tag
		}
	}
	return SchemeLegacy
}

func (c *Codec) run(sch scheme, payload string) (string, error) {
	data, err := sch.decode(payload, c.maxSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errors.New("decoded content is not valid UTF-8")
	}
	return string(data), nil
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDeflate(payload string, limit int) ([]byte, error) {
	packed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	r := flate.NewReader(bytes.NewReader(packed))
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(data) > limit {
		return nil, fmt.Errorf("inflated content exceeds %d bytes", limit)
	}
	return data, nil
}

func decodeBase64URL(payload string, limit int) ([]byte, error) {
	if base64.RawURLEncoding.DecodedLen(len(payload)) > limit {
		return nil, fmt.Errorf("payload exceeds %d bytes", limit)
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	return data, nil
}

// decodeLegacyBase64 reads padded standard base64 of UTF-8. Links of this
// kind were written unescaped, so '+' may have been turned into a space and
// '+', '/' and '=' may arrive percent-escaped.
func decodeLegacyBase64(payload string, limit int) ([]byte, error) {
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	unescaped = strings.ReplaceAll(unescaped, " ", "+")
	if base64.StdEncoding.DecodedLen(len(unescaped)) > limit {
		return nil, fmt.Errorf("payload exceeds %d bytes", limit)
	}
	return base64.StdEncoding.DecodeString(unescaped)
}

// decodeLegacyPercent reads percent-encoded text. A payload that could be
// base64 and has no escapes is a damaged base64 token, not text.
func decodeLegacyPercent(payload string, limit int) ([]byte, error) {
	if !strings.Contains(payload, "%") && base64Shape.MatchString(payload) {
		return nil, errors.New("payload looks like damaged base64")
	}
	if len(payload) > limit {
		return nil, fmt.Errorf("payload exceeds %d bytes", limit)
	}
	text, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
