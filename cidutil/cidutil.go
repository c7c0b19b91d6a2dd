package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1JSONSHA256 returns a CIDv1 string using the "dag-json" multicodec
// and a sha2-256 multihash. Every kernel payload is a canonical JSON array,
// so dag-json is the codec for all identifiers in this module.
func CIDv1JSONSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.DagJSON, sum).String()
}

// CIDv1JSONSHA256CID returns a CIDv1 (dag-json + sha2-256) derived from data.
func CIDv1JSONSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.DagJSON, sum), nil
}
