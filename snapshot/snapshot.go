// Package snapshot
//
// (C) Copyright OrinDB
//
// Original Author: Alex Gaetano Padula
//
// Licensed under the Mozilla Public License, v. 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/wildcatdb/cstack/stack"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	MagicNumber       = uint32(0x4B545343) // "CSTK" little endian
	Version           = uint32(1)
	HeaderSize        = 24     // magic(4) + version(4) + length(8) + checksum(8)
	TempFileExtension = ".tmp" // Suffix of the file written before the rename
)

type SyncOption int

const (
	SyncNone SyncOption = iota
	SyncFull
)

// Defaults
const (
	DefaultSyncOption = SyncNone
	DefaultPermission = 0640
)

var (
	ErrTruncated          = errors.New("snapshot is truncated")
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrCountMismatch      = errors.New("snapshot item count mismatch")
)

// Options represents the configuration for saving and loading a snapshot file
type Options struct {
	Path       string      // Path of the snapshot file
	Permission os.FileMode // Permission for created files
	SyncOption SyncOption  // Sync option for the write
	LogChannel chan string // Channel for logging
}

// Header is the fixed size frame in front of every snapshot payload
type Header struct {
	Magic    uint32
	Version  uint32
	Length   uint64 // Payload size in bytes
	Checksum uint64 // xxhash64 of the payload
}

// document is the bson payload, items are ordered bottom to top
type document[T any] struct {
	Version int32 `bson:"version"`
	Count   int64 `bson:"count"`
	Items   []T   `bson:"items"`
}

// validate checks the options and fills in defaults
func (opts *Options) validate() error {
	if opts == nil {
		return errors.New("options cannot be nil")
	}

	if opts.Path == "" {
		return errors.New("path cannot be empty")
	}

	if opts.Permission == 0 {
		opts.Permission = DefaultPermission
	}

	if opts.SyncOption < SyncNone || opts.SyncOption > SyncFull {
		opts.SyncOption = DefaultSyncOption
	}

	return nil
}

// log logs a message to the log channel
func (opts *Options) log(msg string) {
	if opts.LogChannel != nil {
		opts.LogChannel <- msg
	}
}

// Encode serializes a copy of s.
// The source is only read-locked for the duration of the copy.
func Encode[T any](s *stack.Stack[T]) ([]byte, error) {
	if s == nil {
		return nil, errors.New("stack cannot be nil")
	}

	// We drain a private clone, so its length cannot change under us
	c := s.Clone()
	n := c.Len()
	items := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		c.PopInto(&items[i])
	}

	payload, err := bson.Marshal(&document[T]{
		Version: int32(Version),
		Count:   int64(n),
		Items:   items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	header := Header{
		Magic:    MagicNumber,
		Version:  Version,
		Length:   uint64(len(payload)),
		Checksum: xxhash.Sum64(payload),
	}

	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	header.put(buf)

	return append(buf, payload...), nil
}

// Decode rebuilds a stack from data produced by Encode.
// The top of the encoded stack is the top of the returned stack.
func Decode[T any](data []byte) (*stack.Stack[T], error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) < header.Length {
		return nil, ErrTruncated
	}
	payload = payload[:header.Length]

	if xxhash.Sum64(payload) != header.Checksum {
		return nil, ErrChecksumMismatch
	}

	var doc document[T]
	err = bson.Unmarshal(payload, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	if doc.Count != int64(len(doc.Items)) {
		return nil, ErrCountMismatch
	}

	s := stack.New[T]()
	for _, item := range doc.Items {
		s.Push(item)
	}

	return s, nil
}

// Save writes a snapshot of s to opts.Path.
// The snapshot is written to a temporary file first and renamed into place.
func Save[T any](s *stack.Stack[T], opts *Options) error {
	err := opts.validate()
	if err != nil {
		return err
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}

	tmpPath := opts.Path + TempFileExtension

	err = writeFile(tmpPath, data, opts)
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	err = os.Rename(tmpPath, opts.Path)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	opts.log(fmt.Sprintf("snapshot: saved %d bytes to %s", len(data), opts.Path))

	return nil
}

// Load reads the snapshot at opts.Path into a new stack
func Load[T any](opts *Options) (*stack.Stack[T], error) {
	err := opts.validate()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, err
	}

	s, err := Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", opts.Path, err)
	}

	opts.log(fmt.Sprintf("snapshot: loaded %d items from %s", s.Len(), opts.Path))

	return s, nil
}

// writeFile writes data to path, syncing it if requested
func writeFile(path string, data []byte, opts *Options) error {
	fd, err := OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, uint32(opts.Permission.Perm()))
	if err != nil {
		return err
	}

	file := NewFileFromFd(fd, path)

	_, err = file.Write(data)
	if err != nil {
		_ = file.Close()
		return err
	}

	if opts.SyncOption == SyncFull {
		err = Fdatasync(file.Fd())
		if err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to sync snapshot: %w", err)
		}
	}

	return file.Close()
}

// put writes the header into buf, buf must be at least HeaderSize long
func (h *Header) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.Checksum)
}

// readHeader reads and validates the header at the start of data
func readHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}

	header := &Header{
		Magic:    binary.LittleEndian.Uint32(data[0:4]),
		Version:  binary.LittleEndian.Uint32(data[4:8]),
		Length:   binary.LittleEndian.Uint64(data[8:16]),
		Checksum: binary.LittleEndian.Uint64(data[16:24]),
	}

	if header.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}

	if header.Version != Version {
		return nil, ErrUnsupportedVersion
	}

	return header, nil
}
