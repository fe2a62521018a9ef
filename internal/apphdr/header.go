// Package apphdr implements the application-registry abstraction the
// original firmware got by scanning linker-bracketed memory regions.
// Here it is an iterator of (Header, LoaderKind) pairs, per the
// kernel's redesign note: validity checks (in the kernel's task-loading
// path) and dedup checks (in the task table) stay out of the registry.
package apphdr

import (
	"encoding/binary"
	"fmt"

	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
)

// LoaderKind tells the task table which PlatformLoader method to call
// for a header discovered by a given registry.
type LoaderKind int

const (
	LoaderInternal LoaderKind = iota
	LoaderExternal
)

// Header is the read-only metadata record at the start of an
// application image.
type Header struct {
	Magic   [4]byte
	Version uint32
	Marker  uint32
	AppID   uint64
	RelEnd  uint32 // byte length of the record; only meaningful for external headers
}

// Valid reports whether a header passes the magic/version/marker
// checks for the region it was discovered in.
func (h Header) Valid(wantMarker uint32) bool {
	return h.Magic == constants.HeaderMagic &&
		h.Version == constants.HeaderVersion &&
		h.Marker == wantMarker
}

// Registry iterates candidate application headers. Next returns
// false once exhausted.
type Registry interface {
	Next() (Header, LoaderKind, bool)
}

// StaticRegistry walks a compile-time slice of headers — the
// analogue of the internal-apps region bracketed by link-time
// symbols in the original.
type StaticRegistry struct {
	headers []Header
	pos     int
}

// NewStaticRegistry builds a registry over a fixed, compiled-in set
// of headers.
func NewStaticRegistry(headers []Header) *StaticRegistry {
	return &StaticRegistry{headers: headers}
}

func (r *StaticRegistry) Next() (Header, LoaderKind, bool) {
	if r.pos >= len(r.headers) {
		return Header{}, LoaderInternal, false
	}
	h := r.headers[r.pos]
	r.pos++
	return h, LoaderInternal, true
}

// headerWireSize is the fixed-width encoding used by ExternalRegistry:
// 4 bytes magic, 4 bytes version, 4 bytes marker, 8 bytes appId,
// 4 bytes relEnd. Mirrors the manual binary.LittleEndian field
// encode/decode idiom the teacher used for wire structs, applied to
// application headers instead of ioctl command structs.
const headerWireSize = 24

// ExternalRegistry walks a concatenated byte blob of external
// application headers, stepping from one record to the next using
// each header's RelEnd field — the analogue of the original's
// rel_end-stepping scan from a base symbol to code end.
type ExternalRegistry struct {
	blob   []byte
	offset int
	trust  TrustPolicy
}

// TrustPolicy gates which external headers the registry will yield,
// standing in for the original's debug-vs-release public-key check:
// the key bytes are opaque to the core, but something still has to
// decide which signing class an external app was accepted under.
type TrustPolicy interface {
	Accept(h Header) bool
}

// AllowAllTrustPolicy accepts every external header; useful for tests
// and for hosts that perform signature verification elsewhere.
type AllowAllTrustPolicy struct{}

func (AllowAllTrustPolicy) Accept(Header) bool { return true }

// NewExternalRegistry builds a registry over a byte blob, e.g. one
// supplied by a host-interface transport after a firmware push.
func NewExternalRegistry(blob []byte, trust TrustPolicy) *ExternalRegistry {
	if trust == nil {
		trust = AllowAllTrustPolicy{}
	}
	return &ExternalRegistry{blob: blob, trust: trust}
}

func (r *ExternalRegistry) Next() (Header, LoaderKind, bool) {
	for r.offset+headerWireSize <= len(r.blob) {
		h, err := decodeHeader(r.blob[r.offset : r.offset+headerWireSize])
		if err != nil || h.RelEnd < headerWireSize {
			// Can't make sense of the rest of the blob; stop scanning
			// rather than risk stepping into garbage.
			return Header{}, LoaderExternal, false
		}
		next := r.offset + int(h.RelEnd)
		r.offset = next
		if !r.trust.Accept(h) {
			continue
		}
		return h, LoaderExternal, true
	}
	return Header{}, LoaderExternal, false
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < headerWireSize {
		return Header{}, fmt.Errorf("apphdr: short header record (%d bytes)", len(b))
	}
	var h Header
	copy(h.Magic[:], b[0:4])
	h.Version = binary.LittleEndian.Uint32(b[4:8])
	h.Marker = binary.LittleEndian.Uint32(b[8:12])
	h.AppID = binary.LittleEndian.Uint64(b[12:20])
	h.RelEnd = binary.LittleEndian.Uint32(b[20:24])
	return h, nil
}

// EncodeHeader is the inverse of decodeHeader, exported so tests and
// host tooling can construct well-formed external blobs.
func EncodeHeader(h Header) []byte {
	b := make([]byte, headerWireSize)
	copy(b[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint32(b[8:12], h.Marker)
	binary.LittleEndian.PutUint64(b[12:20], h.AppID)
	binary.LittleEndian.PutUint32(b[20:24], h.RelEnd)
	return b
}
