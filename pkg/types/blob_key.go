package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

const blobKeySize = 512 / 8

// BlobKey is a content-based key of a raw submission document in the blob
// storage.
type BlobKey [blobKeySize]byte

var (
	_ driver.Valuer = (*BlobKey)(nil)
	_ sql.Scanner   = (*BlobKey)(nil)
)

// NewBlobKey calculates a BlobKey of the given content.
func NewBlobKey(blob []byte) BlobKey {
	return BlobKey(blake3.Sum512(blob))
}

// ParseBlobKey parses the hex representation of a BlobKey (as returned by String).
func ParseBlobKey(s string) (BlobKey, error) {
	var result BlobKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return result, fmt.Errorf("unable to decode '%s': %w", s, err)
	}
	if len(b) != len(result) {
		return result, fmt.Errorf("invalid length: %d != %d", len(b), len(result))
	}
	copy(result[:], b)
	return result, nil
}

// String implements fmt.Stringer.
func (key BlobKey) String() string {
	return hex.EncodeToString(key[:])
}

// Bytes returns the key as a slice.
func (key BlobKey) Bytes() []byte {
	return key[:]
}

// IsZero returns true if the key was never set.
func (key BlobKey) IsZero() bool {
	return key == BlobKey{}
}

// Value implements driver.Valuer.
func (key BlobKey) Value() (driver.Value, error) {
	return key[:], nil
}

// Scan implements sql.Scanner.
func (key *BlobKey) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, received %T", src)
	}
	if len(b) != len(*key) {
		return fmt.Errorf("invalid length: %d != %d", len(b), len(*key))
	}
	copy(key[:], b)
	return nil
}
