// Package cursor turns keyset positions into opaque, tamper-evident tokens
// and back.
//
// A token is base64url (no padding) over the canonical JSON
//
//	{"backward":false,"fp":"<hex>","scope":"articles","size":20,
//	 "sort":"title:asc,id:asc","v":1,"values":["m",7]}
//
// fp binds every other field and the codec secret, so a token edited by a
// client, or issued for a different scope, fails to decode. Tokens are not
// encrypted: sort key values are readable by whoever holds the token.
package cursor

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/window"
)

// ErrInvalidCursor is wrapped by every Decode failure.
var ErrInvalidCursor = errors.New("invalid cursor")

var encoding = base64.RawURLEncoding

// Codec encodes and decodes keyset positions. The zero value is usable;
// set Secret to stop clients from minting their own tokens.
type Codec struct {
	Secret string
}

// Scope names a walk over source narrowed by filter. A nil filter scopes
// to source alone; otherwise a short fingerprint of the filter is
// appended, so a token from one filtered walk cannot continue another.
func Scope(source string, filter queryir.Predicate) (string, error) {
	if queryir.Unwrap(filter) == nil {
		return source, nil
	}
	fp, err := ir.Fingerprint(ir.DomainCursor, queryir.Describe(filter))
	if err != nil {
		return "", fmt.Errorf("cursor scope: %w", err)
	}
	return source + "/" + fp[:16], nil
}

// Encode returns the token for pos. scope names what the token pages over
// (usually a collection or base query fingerprint); Decode must be given
// the same scope.
func (c Codec) Encode(pos window.KeysetPosition, scope string) (string, error) {
	for i, v := range pos.Values {
		if ir.IsNull(v) {
			return "", fmt.Errorf("encode cursor: value %d is null", i)
		}
	}
	if !pos.Sort.IsSorted() {
		return "", fmt.Errorf("encode cursor: position has no sort")
	}

	fields := c.fields(pos, scope)
	fp, err := ir.Fingerprint(ir.DomainCursor, c.signed(fields))
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	fields["fp"] = fp

	data, err := ir.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return encoding.EncodeToString(data), nil
}

// Decode parses a token issued by Encode for the same scope and secret.
func (c Codec) Decode(token, scope string) (window.KeysetPosition, error) {
	data, err := encoding.DecodeString(token)
	if err != nil {
		return window.KeysetPosition{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	v, err := ir.UnmarshalValue(data)
	if err != nil {
		return window.KeysetPosition{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return window.KeysetPosition{}, fmt.Errorf("%w: not an object", ErrInvalidCursor)
	}

	tok, err := parseToken(obj)
	if err != nil {
		return window.KeysetPosition{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if tok.version != ir.CursorVersion {
		return window.KeysetPosition{}, fmt.Errorf("%w: version %d, want %d", ErrInvalidCursor, tok.version, ir.CursorVersion)
	}

	fields := c.fields(tok.pos, tok.scope)
	want, err := ir.Fingerprint(ir.DomainCursor, c.signed(fields))
	if err != nil {
		return window.KeysetPosition{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(tok.fp)) != 1 {
		return window.KeysetPosition{}, fmt.Errorf("%w: fingerprint mismatch", ErrInvalidCursor)
	}
	if tok.scope != scope {
		return window.KeysetPosition{}, fmt.Errorf("%w: issued for %q, not %q", ErrInvalidCursor, tok.scope, scope)
	}
	return tok.pos, nil
}

func (c Codec) fields(pos window.KeysetPosition, scope string) map[string]any {
	values := ir.Array(pos.Values)
	if values == nil {
		values = ir.Array{}
	}
	return map[string]any{
		"v":        ir.CursorVersion,
		"scope":    scope,
		"sort":     pos.Sort.String(),
		"values":   values,
		"size":     pos.Size,
		"backward": pos.Backward,
	}
}

func (c Codec) signed(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["secret"] = c.Secret
	return out
}

type token struct {
	version int64
	scope   string
	fp      string
	pos     window.KeysetPosition
}

func parseToken(obj ir.Object) (token, error) {
	var tok token

	version, ok := obj.Get("v").(ir.Int)
	if !ok {
		return tok, errors.New("missing version")
	}
	scope, ok := obj.Get("scope").(ir.String)
	if !ok {
		return tok, errors.New("missing scope")
	}
	fp, ok := obj.Get("fp").(ir.String)
	if !ok {
		return tok, errors.New("missing fingerprint")
	}
	sortText, ok := obj.Get("sort").(ir.String)
	if !ok {
		return tok, errors.New("missing sort")
	}
	values, ok := obj.Get("values").(ir.Array)
	if !ok {
		return tok, errors.New("missing values")
	}
	size, ok := obj.Get("size").(ir.Int)
	if !ok {
		return tok, errors.New("missing size")
	}
	backward, ok := obj.Get("backward").(ir.Bool)
	if !ok {
		return tok, errors.New("missing direction")
	}

	sort, err := window.ParseSort(string(sortText))
	if err != nil {
		return tok, err
	}
	start, err := window.KeysetStart(sort, int(size))
	if err != nil {
		return tok, err
	}

	tok.version = int64(version)
	tok.scope = string(scope)
	tok.fp = string(fp)
	switch {
	case len(values) == 0 && !bool(backward):
		tok.pos = start
	case bool(backward):
		tok.pos = start.Before(values...)
	default:
		tok.pos = start.After(values...)
	}
	return tok, nil
}
