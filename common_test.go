package bincode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// failingReader returns err after yielding data
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// failingWriter rejects every write with err
type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

// requireKind asserts that err is an *Error of kind K and returns the kind
func requireKind[K ErrorKind](t *testing.T, err error) K {
	t.Helper()
	require.Error(t, err)
	k, ok := IsKind[K](err)
	require.Truef(t, ok, "expected %T, got %T: %v", k, err, err)
	return k
}
