package srp

// Item is a value accepted by the hash combinator. It is implemented by
// Fixed, which contributes its canonical big-endian bytes, and by Text,
// which contributes its UTF-8 bytes.
type Item interface {
	appendTo(dst []byte) []byte
}

// Text is a string fed to the hash combinator as UTF-8.
type Text string

func (t Text) appendTo(dst []byte) []byte {
	return append(dst, t...)
}

func (x Fixed) appendTo(dst []byte) []byte {
	return append(dst, x.Bytes()...)
}

// H hashes the concatenation of items with the parameter set's hash function.
// There are no separators or length prefixes; callers pass only fixed-width
// integers and at most one trailing variable-length Text so the encoding
// stays unambiguous. The digest is returned with a width of twice the hash
// size in bytes.
func (p *Params) H(items ...Item) Fixed {
	h := p.hash.New()
	var buf []byte
	for _, item := range items {
		buf = item.appendTo(buf[:0])
		h.Write(buf)
	}
	clear(buf)
	return fixedFromBytes(h.Sum(nil), 2*h.Size())
}
