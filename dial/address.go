package dial

import (
	ma "github.com/multiformats/go-multiaddr"
)

// Address pairs a multiaddr with whether it came from a signed peer
// record. IsCertified is sticky-true under DedupAddresses: if any source
// for the same string form was certified, the deduped record is
// certified.
type Address struct {
	Multiaddr   ma.Multiaddr
	IsCertified bool
}

// DedupAddresses removes addresses with the same string form, OR-ing their
// IsCertified flags into the surviving record. Order of first occurrence
// is preserved.
func DedupAddresses(addrs []Address) []Address {
	seen := make(map[string]int, len(addrs))
	out := make([]Address, 0, len(addrs))
	for _, a := range addrs {
		key := a.Multiaddr.String()
		if idx, ok := seen[key]; ok {
			if a.IsCertified {
				out[idx].IsCertified = true
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, a)
	}
	return out
}
