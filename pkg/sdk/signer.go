package sdk

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// StampLayout is the minute-resolution timestamp the service signs with.
const StampLayout = "01/02/2006-15:04"

// FormatStamp renders t as MM/DD/YYYY-HH:mm.
func FormatStamp(t time.Time) string {
	return t.Format(StampLayout)
}

// Sign computes the request key: hex(SHA1(deviceID + stamp + authCode)).
// Any input may be empty.
func Sign(deviceID, stamp, authCode string) string {
	sum := sha1.Sum([]byte(deviceID + stamp + authCode))
	return hex.EncodeToString(sum[:])
}

// Params is an insertion-ordered parameter set. Setting an existing key
// replaces its value in place.
type Params struct {
	keys []string
	vals map[string]string
}

// NewParams builds Params from alternating key, value pairs.
func NewParams(kv ...string) *Params {
	p := &Params{vals: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

func (p *Params) Set(key, value string) {
	if p.vals == nil {
		p.vals = make(map[string]string)
	}
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

func (p *Params) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Merge copies other into p: keys p already has keep their position, new
// keys are appended in other's order.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		p.Set(k, other.vals[k])
	}
}

// Encode joins key=value pairs with &. With a non-nil order only the listed
// keys are emitted, in that order; keys absent from p are skipped. Values are
// not form-encoded: the service expects them raw (an email keeps its @), so
// only characters that cannot appear in a URL are escaped.
func (p *Params) Encode(order []string) string {
	keys := order
	if keys == nil {
		keys = p.keys
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := p.vals[k]
		if !ok {
			continue
		}
		parts = append(parts, k+"="+looseEscape(v))
	}
	return strings.Join(parts, "&")
}

// BuildURL returns base/fn.php?query.
func BuildURL(base, fn string, p *Params, order []string) string {
	u := strings.TrimRight(base, "/") + "/" + fn + ".php"
	if qs := p.Encode(order); qs != "" {
		u += "?" + qs
	}
	return u
}

const hexDigits = "0123456789ABCDEF"

// looseEscape percent-encodes what a browser would when handed an unencoded
// query: controls, space, non-ASCII and the delimiters "#<>'.
func looseEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c >= 0x7f || strings.IndexByte("\"#<>'", c) >= 0 {
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// encodeComponent escapes a single query component, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// provided reports whether a caller-supplied override should be used. Empty
// values and the literal strings null and undefined are ignored.
func provided(v string) bool {
	return v != "" && v != "null" && v != "undefined"
}
