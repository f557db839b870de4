package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш содержимого файла.
type Digest [32]byte

func DigestOf(content []byte) Digest {
	return sha256.Sum256(content)
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}
