// Package codec converts document content to a compact, URL-safe token and
// back.
//
// # Token format
//
// Every token written by Encode carries a scheme tag:
//
//	z1.<base64url(deflate(utf8))>   compressed, used when it is the shorter form
//	b1.<base64url(utf8)>            uncompressed, wins for very short content
//
// Both payloads use the unpadded base64url alphabet, so a token can be placed
// in a query string or fragment without escaping.
//
// # Legacy links
//
// Links shared before tokens were tagged carry either padded standard base64
// of the UTF-8 text or plain percent-encoded text. Untagged tokens are tried
// against those decoders in that order, so old links keep opening after the
// default scheme changes. A new scheme is added by registering another tag in
// New; the existing tags must keep decoding forever.
//
// # Errors
//
// Decode never panics on hostile input. It returns a *DecodeError whose Kind
// is ErrEmpty when no token was given and ErrMalformed otherwise:
//
//	content, err := codec.Decode(tok)
//	if errors.Is(err, codec.ErrEmpty) {
//		// keep the default document
//	}
package codec
