package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const regionChunks = 1024
const regionSectorSize = 4096

var ErrNoChunk = errors.New("region: chunk not found")
var ErrInvalidChunkLength = errors.New("region: invalid chunk length")
var ErrInvalidCompression = errors.New("region: invalid compression format")

type regionCompression byte

const (
	regionCompressionGzip    regionCompression = 1
	regionCompressionDeflate regionCompression = 2
	regionCompressionNone    regionCompression = 3
)

// regionFile gives access to the chunks of an in-memory Anvil region file.
// Chunk payloads are big-endian NBT.
type regionFile struct {
	data        []byte
	sectorTable [regionChunks]uint32
}

func parseRegion(data []byte) (*regionFile, error) {
	if len(data) < regionSectorSize {
		return nil, fmt.Errorf("region: header needs %d bytes, file has %d", regionSectorSize, len(data))
	}
	region := &regionFile{data: data}
	err := binary.Read(bytes.NewReader(data[:regionSectorSize]), binary.BigEndian, region.sectorTable[:])
	if err != nil {
		return nil, err
	}
	return region, nil
}

func (region *regionFile) chunkExists(x, z int) bool {
	return region.sectorTable[x+z*32] != 0
}

// readChunk returns the decompressed NBT of the chunk at x, z. The coordinates
// are relative to the region, 0 to 31.
func (region *regionFile) readChunk(x, z int) ([]byte, error) {
	if x < 0 || x >= 32 || z < 0 || z >= 32 {
		return nil, fmt.Errorf("region: chunk %d,%d is outside the region", x, z)
	}
	if !region.chunkExists(x, z) {
		return nil, ErrNoChunk
	}
	offset := region.sectorTable[x+z*32]
	sectorNumber := int64(offset >> 8)
	occupiedSectors := int64(offset & 0xff)

	// sector 0 is the header itself
	start := sectorNumber * regionSectorSize
	end := start + occupiedSectors*regionSectorSize
	if sectorNumber == 0 || occupiedSectors == 0 || end > int64(len(region.data)) {
		return nil, fmt.Errorf("%w: sectors %d+%d outside the file", ErrInvalidChunkLength, sectorNumber, occupiedSectors)
	}

	sectorReader := bytes.NewReader(region.data[start:end])
	var sectorHeader struct {
		Length      int32
		Compression regionCompression
	}
	if err := binary.Read(sectorReader, binary.BigEndian, &sectorHeader); err != nil {
		return nil, err
	}
	// the length counts the compression byte
	if sectorHeader.Length < 1 || int64(sectorHeader.Length) > end-start-4 {
		return nil, ErrInvalidChunkLength
	}

	chunkStream := io.LimitReader(sectorReader, int64(sectorHeader.Length-1))
	var chunk io.Reader
	switch sectorHeader.Compression {
	case regionCompressionGzip:
		zr, err := gzip.NewReader(chunkStream)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		chunk = zr
	case regionCompressionDeflate:
		zr, err := zlib.NewReader(chunkStream)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		chunk = zr
	case regionCompressionNone:
		chunk = chunkStream
	default:
		return nil, ErrInvalidCompression
	}
	return io.ReadAll(chunk)
}

// parseChunkCoord reads "x,z".
func parseChunkCoord(s string) (x, z int, err error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("chunk %q: want x,z", s)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, fmt.Errorf("chunk %q: %w", s, err)
	}
	if z, err = strconv.Atoi(strings.TrimSpace(zs)); err != nil {
		return 0, 0, fmt.Errorf("chunk %q: %w", s, err)
	}
	return x, z, nil
}
