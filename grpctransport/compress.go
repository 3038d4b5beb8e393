// © Copyright 2025-2026, Qualithm - https://qualithm.dev
// SPDX-License-Identifier: Apache-2.0

package grpctransport

import (
	"io"

	"github.com/klauspost/compress/zstd"
	grpcencoding "google.golang.org/grpc/encoding"
)

// ZstdName is the message-encoding name registered for zstd compression.
// Select it per call with grpc.UseCompressor(grpctransport.ZstdName).
const ZstdName = "zstd"

func init() {
	grpcencoding.RegisterCompressor(&zstdCompressor{})
}

type zstdCompressor struct{}

func (*zstdCompressor) Name() string { return ZstdName }

func (*zstdCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (*zstdCompressor) Decompress(r io.Reader) (io.Reader, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
