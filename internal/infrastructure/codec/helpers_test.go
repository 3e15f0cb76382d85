//go:build unit
// +build unit

package codec

import (
	"crypto/rsa"
	"sync"

	"github.com/ftenafmar/PCLCrypto/internal/pkg/bigutil"
)

var (
	testRsaKeyOnce  sync.Once
	testRsaKeyValue *rsa.PrivateKey
)

func bytesCompare(a, b []byte) int {
	return bigutil.Compare(a, b)
}
