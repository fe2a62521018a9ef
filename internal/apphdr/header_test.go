package apphdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
)

func validHeader(appID uint64, marker uint32) Header {
	return Header{
		Magic:   constants.HeaderMagic,
		Version: constants.HeaderVersion,
		Marker:  marker,
		AppID:   appID,
		RelEnd:  headerWireSize,
	}
}

func TestHeaderValid(t *testing.T) {
	h := validHeader(1, constants.MarkerInternal)
	assert.True(t, h.Valid(constants.MarkerInternal))
	assert.False(t, h.Valid(constants.MarkerValid))

	bad := h
	bad.Version = 99
	assert.False(t, bad.Valid(constants.MarkerInternal))
}

func TestStaticRegistryIterates(t *testing.T) {
	headers := []Header{validHeader(1, constants.MarkerInternal), validHeader(2, constants.MarkerInternal)}
	reg := NewStaticRegistry(headers)

	h, kind, ok := reg.Next()
	require.True(t, ok)
	assert.Equal(t, LoaderInternal, kind)
	assert.Equal(t, uint64(1), h.AppID)

	h, _, ok = reg.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(2), h.AppID)

	_, _, ok = reg.Next()
	assert.False(t, ok)
}

func TestExternalRegistryStepsByRelEnd(t *testing.T) {
	h1 := validHeader(10, constants.MarkerValid)
	h2 := validHeader(20, constants.MarkerValid)

	blob := append(EncodeHeader(h1), EncodeHeader(h2)...)
	reg := NewExternalRegistry(blob, nil)

	got1, kind, ok := reg.Next()
	require.True(t, ok)
	assert.Equal(t, LoaderExternal, kind)
	assert.Equal(t, uint64(10), got1.AppID)

	got2, _, ok := reg.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(20), got2.AppID)

	_, _, ok = reg.Next()
	assert.False(t, ok)
}

func TestExternalRegistryHonorsTrustPolicy(t *testing.T) {
	h1 := validHeader(10, constants.MarkerValid)
	h2 := validHeader(20, constants.MarkerValid)
	blob := append(EncodeHeader(h1), EncodeHeader(h2)...)

	denyFirst := trustFunc(func(h Header) bool { return h.AppID != 10 })
	reg := NewExternalRegistry(blob, denyFirst)

	got, _, ok := reg.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(20), got.AppID)

	_, _, ok = reg.Next()
	assert.False(t, ok)
}

func TestExternalRegistryStopsOnGarbage(t *testing.T) {
	reg := NewExternalRegistry([]byte{1, 2, 3}, nil)
	_, _, ok := reg.Next()
	assert.False(t, ok)
}

type trustFunc func(Header) bool

func (f trustFunc) Accept(h Header) bool { return f(h) }
