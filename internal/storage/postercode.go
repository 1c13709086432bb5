package storage

import "crypto/rand"

// Poster code alphabet omits easily-confused characters (0/O, 1/I/L, U/V)
// since codes are read aloud and hand-copied onto printed posters.
const posterAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const posterCodeLen = 8

// NewPosterCode returns a short, human-shareable report code.
func NewPosterCode() string {
	buf := make([]byte, posterCodeLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in a bad state anyway.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = posterAlphabet[int(b)%len(posterAlphabet)]
	}
	return string(buf)
}
