package httpclient

import "strings"

// Header is a single HTTP header. Adapters keep headers as an ordered list in
// which duplicate names may coexist.
type Header struct {
	Name  string
	Value string
}

// String renders the header as "Name: Value".
func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// ContentType is a MIME type usable in Accept and Content-Type headers.
type ContentType string

const (
	ContentTypeJSON               ContentType = "application/json"
	ContentTypeJSONMergePatch     ContentType = "application/merge-patch+json"
	ContentTypeXWWWFormURLEncoded ContentType = "application/x-www-form-urlencoded"
	ContentTypeXML                ContentType = "application/xml"
	ContentTypeHTML               ContentType = "text/html"
	ContentTypeText               ContentType = "text/plain"
	ContentTypeCSV                ContentType = "text/csv"
	ContentTypePDF                ContentType = "application/pdf"
	ContentTypeJPEG               ContentType = "image/jpeg"
	ContentTypePNG                ContentType = "image/png"
	ContentTypeGIF                ContentType = "image/gif"
	ContentTypeZIP                ContentType = "application/zip"
	ContentTypeTAR                ContentType = "application/x-tar"
	ContentTypeGZIP               ContentType = "application/gzip"
	ContentTypeBZIP2              ContentType = "application/x-bzip2"
	ContentTypeBZIP               ContentType = "application/x-bzip"
	ContentTypeGZ                 ContentType = "application/gz"
	ContentTypeBZ2                ContentType = "application/bz2"
	ContentTypeTARGZ              ContentType = "application/x-tgz"
	ContentTypeTBZ2               ContentType = "application/x-tbz2"
	ContentTypeXZ                 ContentType = "application/x-xz"
	ContentTypeXZ2                ContentType = "application/x-xz2"
)

// Charset is a character encoding suffix for Content-Type.
type Charset string

const (
	CharsetUTF8     Charset = "utf-8"
	CharsetISO88591 Charset = "iso-8859-1"
	CharsetUSASCII  Charset = "us-ascii"
	CharsetUTF16    Charset = "utf-16"
)

// Standard header names.
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestedBy  = "X-Requested-By"
	HeaderXRequestID    = "X-Request-Id"
)

// Accept returns an Accept header for ct.
func Accept(ct ContentType) Header {
	return Header{Name: HeaderAccept, Value: string(ct)}
}

// AcceptJSON returns "Accept: application/json".
func AcceptJSON() Header {
	return Accept(ContentTypeJSON)
}

// ContentTypeHeader returns a Content-Type header. When a charset is given
// the value becomes "<ct>; charset=<charset>".
func ContentTypeHeader(ct ContentType, charset ...Charset) Header {
	value := string(ct)
	if len(charset) > 0 && charset[0] != "" {
		value += "; charset=" + string(charset[0])
	}
	return Header{Name: HeaderContentType, Value: value}
}

// XRequestedBy returns an X-Requested-By header.
func XRequestedBy(value string) Header {
	return Header{Name: HeaderXRequestedBy, Value: value}
}

// UserAgent returns a User-Agent header.
func UserAgent(value string) Header {
	return Header{Name: HeaderUserAgent, Value: value}
}

// ParseHeader parses "Name: Value". The second result is false when line has
// no colon or an empty name.
func ParseHeader(line string) (Header, bool) {
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Header{}, false
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, true
}

func withoutHeader(headers []Header, match func(Header) bool) []Header {
	out := make([]Header, 0, len(headers))
	for _, h := range headers {
		if match(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}
