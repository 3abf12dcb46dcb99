//go:build !malgo

// ABOUTME: Malgo stub when the library is not compiled in
// ABOUTME: Provides compile-time placeholder when built without -tags malgo
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-beatbox/pkg/audio"
)

// NewMalgo reports that miniaudio support was not compiled in
func NewMalgo(format audio.Format, bufferMs int) (Device, error) {
	return nil, fmt.Errorf("malgo support not enabled (build with -tags malgo)")
}
