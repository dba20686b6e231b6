package domain

// Zero overwrites key material in place so plaintext DEK bytes do not
// outlive their use. Safe on nil slices.
func Zero(b []byte) {
	clear(b)
}
