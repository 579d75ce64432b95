// Package hasher derives short content hashes for output files and
// decoded pixel data.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/imgcore-cli/internal/raster"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen characters (0 keeps all 16).
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// PlaneDigest hashes the pixel content of img: its dimensions, then every
// plane in order. Two images with equal digests decode to the same
// samples regardless of the file format that carried them.
func PlaneDigest(img *raster.Image, hexLen int) string {
	h := xxhash.New()
	var hdr [24]byte
	binary.BigEndian.PutUint64(hdr[0:], uint64(img.Width()))
	binary.BigEndian.PutUint64(hdr[8:], uint64(img.Height()))
	binary.BigEndian.PutUint64(hdr[16:], uint64(img.NumPlanes()))
	h.Write(hdr[:])
	for i := 0; i < img.NumPlanes(); i++ {
		h.Write(img.Plane(i).Pix())
	}
	return format(h.Sum64(), hexLen)
}

func format(sum uint64, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, sum))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
