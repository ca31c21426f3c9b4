package perf

import "io"

// directThreshold is the largest payload size read or written without
// going through the chunked, pool-backed path.
const directThreshold = 1 << 16

// ReadAll reads everything available from r. Payloads that fit within
// directThreshold are read in one shot; larger reads are serviced in
// pool-backed chunks so no single allocation scales with the input size.
func ReadAll(r io.Reader) ([]byte, error) {
	buf := Allocate(directThreshold)
	defer Deallocate(buf)

	var out []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

// WriteAll writes data to w, chunking through pool-backed buffers when
// data exceeds directThreshold so large writes don't pin the caller's
// original slice for the duration of the syscall loop.
func WriteAll(w io.Writer, data []byte) error {
	if len(data) <= directThreshold {
		_, err := w.Write(data)
		return err
	}

	chunk := Allocate(directThreshold)
	defer Deallocate(chunk)

	for len(data) > 0 {
		n := copy(chunk, data)
		if _, err := w.Write(chunk[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
