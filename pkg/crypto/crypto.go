package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"math/big"
)

// DrawAlgorithm identifies the deterministic expansion implemented by
// SelectWithoutReplacement. It is recorded next to the seed of every
// completed drawing; bump the suffix whenever the expansion changes.
const DrawAlgorithm = "hmac-sha256-fisher-yates-v1"

func SHA256(b []byte) string {
	hashed := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(hashed[:])
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// RandRange returns a uniform random value in [a, b). It panics if got a
// non-positive parameter or a>=b.
func RandRange(a, b int) int {
	return RandIntn(b-a) + a
}

// DrawSeed returns 32 bytes of CSPRNG seed material for a drawing.
func DrawSeed() ([]byte, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}

	return seed, nil
}

// SelectWithoutReplacement picks k distinct numbers in [1, n], expanded
// deterministically from the seed. Replaying the same seed against the same
// n and k reproduces the same numbers in the same order.
func SelectWithoutReplacement(seed []byte, n, k int) ([]int, error) {
	if n <= 0 {
		return nil, errors.New("nothing to select from")
	}

	if k <= 0 || k > n {
		return nil, errors.New("invalid selection count")
	}

	// Partial Fisher-Yates over [0, n), tracking only touched positions.
	stream := &drawStream{seed: seed}
	swapped := make(map[int]int, 2*k)
	numbers := make([]int, 0, k)
	for i := 0; i < k; i++ {
		j := i + stream.intn(n-i)

		vj, ok := swapped[j]
		if !ok {
			vj = j
		}

		vi, ok := swapped[i]
		if !ok {
			vi = i
		}

		swapped[j] = vi
		numbers = append(numbers, vj+1)
	}

	return numbers, nil
}

// drawStream expands a seed into an endless byte stream with HMAC-SHA256
// over a big-endian block counter.
type drawStream struct {
	seed    []byte
	counter uint64
	buf     []byte
}

func (s *drawStream) next() uint64 {
	if len(s.buf) < 8 {
		mac := hmac.New(sha256.New, s.seed)
		var block [8]byte
		binary.BigEndian.PutUint64(block[:], s.counter)
		mac.Write(block[:])
		s.counter++
		s.buf = append(s.buf, mac.Sum(nil)...)
	}

	v := binary.BigEndian.Uint64(s.buf[:8])
	s.buf = s.buf[8:]
	return v
}

// intn returns a uniform value in [0, n) with rejection sampling, so the
// modulo never biases small numbers.
func (s *drawStream) intn(n int) int {
	reject := (math.MaxUint64%uint64(n) + 1) % uint64(n)
	for {
		v := s.next()
		if reject == 0 || v <= math.MaxUint64-reject {
			return int(v % uint64(n))
		}
	}
}
